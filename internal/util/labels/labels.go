package labels

import "strings"

// Standard label keys for runner servers.
const (
	// KeyOwnerID is the numeric GitHub owner (user or organization) ID.
	KeyOwnerID = "hcloud-runner.io/owner-id"

	// KeyRepositoryID is the numeric GitHub repository ID.
	KeyRepositoryID = "hcloud-runner.io/repository-id"

	// KeyRunner is the runner name, which is also the server name.
	KeyRunner = "hcloud-runner.io/runner"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "hcloud-runner.io/managed-by"
)

// ManagedByRunner is the managed-by value set on every server.
const ManagedByRunner = "hcloud-runner"

// MaxValueLength is the longest label value Hetzner Cloud accepts.
const MaxValueLength = 63

// SanitizeValue turns s into a valid Hetzner Cloud label value. Characters
// other than ASCII letters, digits, '-', '_' and '.' become '-', the value is
// cut to MaxValueLength and must begin and end with a letter or digit.
func SanitizeValue(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case isAlphanumeric(r), r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, s)
	if len(mapped) > MaxValueLength {
		mapped = mapped[:MaxValueLength]
	}
	return strings.TrimFunc(mapped, func(r rune) bool { return !isAlphanumeric(r) })
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// LabelBuilder provides a fluent interface for building Hetzner Cloud resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the runner name pre-set.
func NewLabelBuilder(runnerName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyRunner:    SanitizeValue(runnerName),
			KeyManagedBy: ManagedByRunner,
		},
	}
}

// WithOwnerID adds the owner ID label unless id sanitises to nothing.
func (lb *LabelBuilder) WithOwnerID(id string) *LabelBuilder {
	return lb.set(KeyOwnerID, id)
}

// WithRepositoryID adds the repository ID label unless id sanitises to nothing.
func (lb *LabelBuilder) WithRepositoryID(id string) *LabelBuilder {
	return lb.set(KeyRepositoryID, id)
}

func (lb *LabelBuilder) set(key, value string) *LabelBuilder {
	if v := SanitizeValue(value); v != "" {
		lb.labels[key] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}
