package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

type TableConfig struct {
	ResourceWidth int
	ServiceWidth  int
	StatusWidth   int
	AmountWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ResourceWidth: 44,
		ServiceWidth:  40,
		StatusWidth:   6,
		AmountWidth:   14,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func dollars(cents domain.Cents) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// Handle renders a priced run as a fixed-width table.
func (c *Reporter) Handle(run *domain.Run) error {
	funcMap := template.FuncMap{
		"dollars": dollars,
		"formatRow": func(resource, service, status string, raw, capped string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %*s | %*s |",
				c.config.ResourceWidth, resource,
				c.config.ServiceWidth, service,
				c.config.StatusWidth, status,
				c.config.AmountWidth, raw,
				c.config.AmountWidth, capped)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.ResourceWidth+2),
				strings.Repeat("-", c.config.ServiceWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2))
		},
	}

	tmpl := `
Savings Report
Billing Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}}
Total Capped Savings: USD {{dollars .TotalCappedSavingsCents}}/month

{{separator}}
{{formatRow "Resource" "Service" "Status" "Raw (USD)" "Capped (USD)"}}
{{separator}}
{{range .Findings}}{{formatRow .ResourceID .ServiceCode (printf "%s" .Status) (dollars .RawSavingsCents) (dollars .CappedSavingsCents)}}
{{end}}{{separator}}

Billed Cost by Service:
{{range $service, $cents := .ServiceCosts}}  {{$service}}: USD {{dollars $cents}}
{{end}}`

	t, err := template.New("run").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, run)
}

// HandleServices renders the list of resolvable billing dimensions.
func (c *Reporter) HandleServices(services []string) error {
	for _, s := range services {
		if _, err := fmt.Fprintln(c.writer, s); err != nil {
			return err
		}
	}
	return nil
}
