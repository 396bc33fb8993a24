package base

import (
	"strings"

	"github.com/hashicorp-forge/geniectl/internal/config"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

// SplitList splits a comma-separated flag value, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Qualify returns name unchanged when it is already catalog.schema.object
// and inside the configured catalog and schema otherwise.
func Qualify(cfg *config.Config, name string) string {
	if serialized.ValidIdentifier(name) {
		return name
	}
	return cfg.Qualify(name)
}
