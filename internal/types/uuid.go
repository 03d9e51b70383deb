package types

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_PLAN               = "plan"
	UUID_PREFIX_SUBSCRIPTION       = "subs"
	UUID_PREFIX_BILLABLE_SERVICE   = "svc"
	UUID_PREFIX_SERVICE_ASSIGNMENT = "svca"
	UUID_PREFIX_INVOICE            = "inv"
	UUID_PREFIX_INVOICE_LINE       = "inv_line"
	UUID_PREFIX_REQUEST            = "req"
	UUID_PREFIX_EVENT              = "evt"
)

// GenerateUUID returns a lower-cased ULID.
func GenerateUUID() string {
	return strings.ToLower(ulid.Make().String())
}

// GenerateUUIDWithPrefix returns prefix_<ulid>.
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
