// Package arn resolves opaque resource references into a resource ID and
// the canonical billing dimension its cost is attributed to.
package arn

import (
	"sort"
	"strings"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// Canonical billing dimensions, matching the service names the provider's
// cost API reports. EC2 is billed as two separate line items: running
// instances under the compute dimension, detached volumes, snapshots and
// floating IPs under the catch-all one.
const (
	ServiceEC2Compute  = "Amazon Elastic Compute Cloud - Compute"
	ServiceEC2Other    = "EC2 - Other"
	ServiceS3          = "Amazon Simple Storage Service"
	ServiceRDS         = "Amazon Relational Database Service"
	ServiceDynamoDB    = "Amazon DynamoDB"
	ServiceLambda      = "AWS Lambda"
	ServiceELB         = "Elastic Load Balancing"
	ServiceElastiCache = "Amazon ElastiCache"
	ServiceOpenSearch  = "Amazon OpenSearch Service"
	ServiceRedshift    = "Amazon Redshift"
	ServiceSQS         = "Amazon Simple Queue Service"
	ServiceSNS         = "Amazon Simple Notification Service"
	ServiceKinesis     = "Amazon Kinesis"
	ServiceCloudWatch  = "AmazonCloudWatch"
	ServiceECS         = "Amazon Elastic Container Service"
	ServiceEFS         = "Amazon Elastic File System"
	ServiceBackup      = "AWS Backup"
	ServiceCloudFront  = "Amazon CloudFront"
)

// serviceIndex maps the raw service segment of a reference to its billing
// dimension. A segment absent from the table is not attributable and must
// never be guessed at.
var serviceIndex = map[string]string{
	"s3":                   ServiceS3,
	"rds":                  ServiceRDS,
	"dynamodb":             ServiceDynamoDB,
	"lambda":               ServiceLambda,
	"elasticloadbalancing": ServiceELB,
	"elasticache":          ServiceElastiCache,
	"es":                   ServiceOpenSearch,
	"redshift":             ServiceRedshift,
	"sqs":                  ServiceSQS,
	"sns":                  ServiceSNS,
	"kinesis":              ServiceKinesis,
	"logs":                 ServiceCloudWatch,
	"cloudwatch":           ServiceCloudWatch,
	"ecs":                  ServiceECS,
	"elasticfilesystem":    ServiceEFS,
	"backup":               ServiceBackup,
	"cloudfront":           ServiceCloudFront,
}

// Resolve parses a resource reference into its resource ID and billing
// dimension. Pure, no I/O.
//
// References follow the hierarchical
// `prefix:partition:service:region:account:descriptor` convention. Anything
// else (bare IDs, references with fewer than six segments) passes through
// unchanged with an empty service code.
func Resolve(ref string) domain.ResourceRef {
	if !strings.Contains(ref, ":") {
		return domain.ResourceRef{ID: ref}
	}

	parts := strings.SplitN(ref, ":", 6)
	if len(parts) < 6 {
		// Malformed hierarchical reference.
		return domain.ResourceRef{ID: ref}
	}

	service := strings.ToLower(parts[2])
	descriptor := parts[5]

	return domain.ResourceRef{
		ID:          resourceID(descriptor),
		ServiceCode: serviceCode(service, descriptor),
	}
}

// resourceID extracts the resource ID from a descriptor. The tail past the
// first separator is kept whole so multi-segment IDs like `app/my-lb/123`
// or `rds:mydb-snap` survive.
func resourceID(descriptor string) string {
	if i := strings.Index(descriptor, "/"); i >= 0 {
		return descriptor[i+1:]
	}
	if i := strings.Index(descriptor, ":"); i >= 0 {
		return descriptor[i+1:]
	}
	return descriptor
}

func serviceCode(service, descriptor string) string {
	if service == "ec2" {
		return ec2ServiceCode(descriptor)
	}
	return serviceIndex[service]
}

// ec2ServiceCode disambiguates the compute-type service on the descriptor
// kind: instances are billed under the compute dimension, everything else
// (volumes, snapshots, floating IPs) under the provider's catch-all.
func ec2ServiceCode(descriptor string) string {
	kind := descriptor
	if i := strings.IndexAny(descriptor, "/:"); i >= 0 {
		kind = descriptor[:i]
	}
	if strings.ToLower(kind) == "instance" {
		return ServiceEC2Compute
	}
	return ServiceEC2Other
}

// Services returns every billing dimension the resolver can attribute a
// reference to, sorted for stable output.
func Services() []string {
	seen := map[string]struct{}{
		ServiceEC2Compute: {},
		ServiceEC2Other:   {},
	}
	for _, code := range serviceIndex {
		seen[code] = struct{}{}
	}

	services := make([]string, 0, len(seen))
	for code := range seen {
		services = append(services, code)
	}
	sort.Strings(services)
	return services
}
