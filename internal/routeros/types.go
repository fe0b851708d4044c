package routeros

// hotspotUser — запись /ip/hotspot/user в REST API RouterOS.
type hotspotUser struct {
	ID       string `json:".id"`
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	Profile  string `json:"profile,omitempty"`
	Disabled string `json:"disabled,omitempty"` // RouterOS отдаёт строки "true"/"false"

	LimitUptime string `json:"limit-uptime,omitempty"`
}

// activeSession — строка таблицы /ip/hotspot/active.
type activeSession struct {
	User       string `json:"user"`
	Address    string `json:"address"`
	MACAddress string `json:"mac-address"`
	Uptime     string `json:"uptime"`
	LoginBy    string `json:"login-by"`
}
