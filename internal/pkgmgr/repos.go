package pkgmgr

// Repository definitions for the two managed services. URLs match the vendor
// installation documentation.

// InfluxDBRepository returns the InfluxData repository definition.
func InfluxDBRepository() Repository {
	return Repository{
		Name:      "influxdb",
		KeyURL:    "https://repos.influxdata.com/influxdata-archive_compat.key",
		AptSource: "deb https://repos.influxdata.com/debian stable main",
		YumContent: `[influxdb]
name = InfluxDB Repository - RHEL
baseurl = https://repos.influxdata.com/rhel/$releasever/$basearch/stable/
enabled = 1
gpgcheck = 1
gpgkey = https://repos.influxdata.com/influxdata-archive_compat.key
`,
		ZypperURL: "https://repos.influxdata.com/opensuse/stable/",
	}
}

// GrafanaRepository returns the Grafana OSS repository definition.
func GrafanaRepository() Repository {
	return Repository{
		Name:      "grafana",
		KeyURL:    "https://packages.grafana.com/gpg.key",
		AptSource: "deb https://packages.grafana.com/oss/deb stable main",
		YumContent: `[grafana]
name=grafana
baseurl=https://packages.grafana.com/oss/rpm
repo_gpgcheck=1
enabled=1
gpgcheck=1
gpgkey=https://packages.grafana.com/gpg.key
sslverify=1
sslcacert=/etc/pki/tls/certs/ca-bundle.crt
`,
		ZypperURL: "https://packages.grafana.com/oss/rpm",
	}
}
