// Package environment performs read-only detection of the host: distribution,
// package manager, firewall manager and privilege level.
//
// Probing never fails the run: unreadable metadata degrades to "unknown" and
// an absent backend tool degrades to "unsupported"/"none".
package environment

import (
	"os"
	"os/exec"
	"strings"

	"github.com/tis24dev/backupmon/internal/types"
)

const (
	osReleasePrimary  = "/etc/os-release"
	osReleaseFallback = "/usr/lib/os-release"
)

// Indirections for tests.
var (
	lookPath    = exec.LookPath
	geteuid     = os.Geteuid
	readFile    = os.ReadFile
	releaseFile = ""
)

// managerBinary maps a package manager kind to the executable probed on PATH.
// firewalld is managed through firewall-cmd; everything else matches its name.
var managerBinary = map[types.PackageManagerKind]string{
	types.PackageManagerApt:    "apt",
	types.PackageManagerDnf:    "dnf",
	types.PackageManagerZypper: "zypper",
	types.PackageManagerPacman: "pacman",
	types.PackageManagerYum:    "yum",
}

// managerFallbackOrder is the ordered scan used when no family-matched manager
// is present. The order mirrors how widespread each manager is.
var managerFallbackOrder = []types.PackageManagerKind{
	types.PackageManagerApt,
	types.PackageManagerDnf,
	types.PackageManagerZypper,
	types.PackageManagerPacman,
	types.PackageManagerYum,
}

// familyPreference is the declarative priority table: for each family, the
// managers that natively belong to it, most preferred first.
var familyPreference = map[types.DistroFamily][]types.PackageManagerKind{
	types.FamilyDebian: {types.PackageManagerApt},
	types.FamilyRedHat: {types.PackageManagerDnf, types.PackageManagerYum},
	types.FamilySUSE:   {types.PackageManagerZypper},
	types.FamilyArch:   {types.PackageManagerPacman},
}

var firewallCandidates = []struct {
	binary string
	kind   types.FirewallKind
}{
	{"ufw", types.FirewallUfw},
	{"firewall-cmd", types.FirewallFirewalld},
	{"iptables", types.FirewallIptables},
}

// familyIDs maps known distribution IDs (and ID_LIKE tokens) to a family.
var familyIDs = map[string]types.DistroFamily{
	"debian":   types.FamilyDebian,
	"ubuntu":   types.FamilyDebian,
	"fedora":   types.FamilyRedHat,
	"centos":   types.FamilyRedHat,
	"rhel":     types.FamilyRedHat,
	"opensuse": types.FamilySUSE,
	"suse":     types.FamilySUSE,
	"arch":     types.FamilyArch,
}

// Info holds the probed host characteristics. It is computed once at
// orchestrator start and never mutated afterwards.
type Info struct {
	DistroID      string
	DistroName    string
	DistroVersion string
	Family        types.DistroFamily

	PackageManager types.PackageManagerKind
	Firewall       types.FirewallKind

	// Privileged reports whether the process runs with effective UID 0.
	Privileged bool
}

// Detect probes the host. It never returns an error: every failure mode
// degrades to an "unknown"/"unsupported" field value.
func Detect() *Info {
	id, name, version, idLike := readOSRelease()
	family := deriveFamily(id, idLike)

	return &Info{
		DistroID:       id,
		DistroName:     name,
		DistroVersion:  version,
		Family:         family,
		PackageManager: selectPackageManager(family),
		Firewall:       selectFirewall(),
		Privileged:     geteuid() == 0,
	}
}

func readOSRelease() (id, name, version, idLike string) {
	id, name, version = "unknown", "Unknown", "unknown"

	path := releaseFile
	if path == "" {
		path = osReleasePrimary
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// freedesktop.org fallback location
			path = osReleaseFallback
		}
	}

	fields := parseKeyValueFile(path)
	if v, ok := fields["ID"]; ok && v != "" {
		id = strings.ToLower(v)
	}
	if v, ok := fields["NAME"]; ok && v != "" {
		name = v
	}
	if v, ok := fields["VERSION_ID"]; ok && v != "" {
		version = v
	}
	idLike = strings.ToLower(fields["ID_LIKE"])
	return id, name, version, idLike
}

// parseKeyValueFile reads a key=value file (os-release format), stripping
// surrounding quotes and skipping comments and malformed lines.
func parseKeyValueFile(path string) map[string]string {
	fields := make(map[string]string)

	data, err := readFile(path)
	if err != nil {
		return fields
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return fields
}

func deriveFamily(id, idLike string) types.DistroFamily {
	if family, ok := familyIDs[id]; ok {
		return family
	}
	for _, token := range strings.Fields(idLike) {
		if family, ok := familyIDs[token]; ok {
			return family
		}
	}
	// IDs like "opensuse-leap" carry the family as a prefix.
	for prefix, family := range familyIDs {
		if strings.HasPrefix(id, prefix) {
			return family
		}
	}
	return types.FamilyUnknown
}

// selectPackageManager prefers a manager whose family matches the detected
// distribution family over one that is merely present on PATH.
func selectPackageManager(family types.DistroFamily) types.PackageManagerKind {
	for _, kind := range familyPreference[family] {
		if _, err := lookPath(managerBinary[kind]); err == nil {
			return kind
		}
	}
	for _, kind := range managerFallbackOrder {
		if _, err := lookPath(managerBinary[kind]); err == nil {
			return kind
		}
	}
	return types.PackageManagerUnsupported
}

func selectFirewall() types.FirewallKind {
	for _, candidate := range firewallCandidates {
		if _, err := lookPath(candidate.binary); err == nil {
			return candidate.kind
		}
	}
	return types.FirewallNone
}
