package types

// DistroFamily groups Linux distributions by their packaging lineage.
type DistroFamily string

const (
	// FamilyDebian - Debian, Ubuntu and derivatives
	FamilyDebian DistroFamily = "debian"

	// FamilyRedHat - Fedora, CentOS, RHEL and derivatives
	FamilyRedHat DistroFamily = "redhat"

	// FamilySUSE - openSUSE and SLES
	FamilySUSE DistroFamily = "suse"

	// FamilyArch - Arch Linux and derivatives
	FamilyArch DistroFamily = "arch"

	// FamilyUnknown - Undetected or unsupported lineage
	FamilyUnknown DistroFamily = "unknown"
)

// String returns the string representation of the distribution family.
func (f DistroFamily) String() string {
	return string(f)
}

// PackageManagerKind identifies a concrete package manager backend.
type PackageManagerKind string

const (
	// PackageManagerApt - apt (Debian/Ubuntu)
	PackageManagerApt PackageManagerKind = "apt"

	// PackageManagerDnf - dnf (Fedora, modern RHEL)
	PackageManagerDnf PackageManagerKind = "dnf"

	// PackageManagerZypper - zypper (openSUSE/SLES)
	PackageManagerZypper PackageManagerKind = "zypper"

	// PackageManagerPacman - pacman (Arch)
	PackageManagerPacman PackageManagerKind = "pacman"

	// PackageManagerYum - yum (legacy RHEL/CentOS)
	PackageManagerYum PackageManagerKind = "yum"

	// PackageManagerUnsupported - no usable package manager found
	PackageManagerUnsupported PackageManagerKind = "unsupported"
)

// String returns the string representation of the package manager kind.
func (p PackageManagerKind) String() string {
	return string(p)
}

// Family returns the distribution family a package manager natively belongs to.
func (p PackageManagerKind) Family() DistroFamily {
	switch p {
	case PackageManagerApt:
		return FamilyDebian
	case PackageManagerDnf, PackageManagerYum:
		return FamilyRedHat
	case PackageManagerZypper:
		return FamilySUSE
	case PackageManagerPacman:
		return FamilyArch
	default:
		return FamilyUnknown
	}
}

// FirewallKind identifies a concrete firewall manager backend.
type FirewallKind string

const (
	// FirewallUfw - ufw (allow-list style)
	FirewallUfw FirewallKind = "ufw"

	// FirewallFirewalld - firewalld (zone based, driven via firewall-cmd)
	FirewallFirewalld FirewallKind = "firewalld"

	// FirewallIptables - raw iptables rules
	FirewallIptables FirewallKind = "iptables"

	// FirewallNone - no supported firewall manager found
	FirewallNone FirewallKind = "none"
)

// String returns the string representation of the firewall kind.
func (f FirewallKind) String() string {
	return string(f)
}

// LogLevel represents the logging level.
type LogLevel int

const (
	// LogLevelDebug - Debug logs (maximum detail)
	LogLevelDebug LogLevel = 5

	// LogLevelInfo - General information
	LogLevelInfo LogLevel = 4

	// LogLevelWarning - Warnings
	LogLevelWarning LogLevel = 3

	// LogLevelError - Errors
	LogLevelError LogLevel = 2

	// LogLevelCritical - Critical errors
	LogLevelCritical LogLevel = 1

	// LogLevelNone - No logs
	LogLevelNone LogLevel = 0
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelError:
		return "ERROR"
	case LogLevelCritical:
		return "CRITICAL"
	case LogLevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}
