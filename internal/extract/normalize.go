package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// combinedTokenRe splits tokens such as "xcpng82" or "vmware70u3".
var combinedTokenRe = regexp.MustCompile(`^([a-zA-Z]+)(.+)$`)

// Normalize separates a combined hypervisor+version token and upper-cases the hypervisor.
// An explicit version always wins. The function is idempotent.
func Normalize(hypervisorRaw, versionRaw string) (hypervisor, version string) {
	hv := strings.TrimSpace(hypervisorRaw)
	ver := strings.TrimSpace(versionRaw)

	if ver != "" {
		if hv == "" {
			return schema.UnknownHypervisor, ver
		}
		return strings.ToUpper(hv), ver
	}

	if m := combinedTokenRe.FindStringSubmatch(hv); m != nil && strings.ContainsAny(m[2], "0123456789") {
		// a separator between the two halves is not part of the version
		if tail := strings.TrimLeftFunc(m[2], isTokenSeparator); tail != "" {
			return strings.ToUpper(m[1]), tail
		}
	}

	if hv == "" {
		return schema.UnknownHypervisor, ""
	}
	return strings.ToUpper(hv), ""
}

// splitEnvironment splits an environment token like "kvm-ol8" on its first hyphen.
// Tokens without a hyphen are returned whole for Normalize to deal with.
func splitEnvironment(token string) (hypervisor, version string) {
	if hv, ver, ok := strings.Cut(token, "-"); ok && hv != "" && ver != "" {
		return hv, ver
	}
	return token, ""
}

func isTokenSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}
