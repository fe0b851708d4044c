package models

// LiveSession — строка таблицы активных сессий хотспота на роутере.
// Снимок живёт только на время запроса или прохода синхронизации,
// в базу не сохраняется.
type LiveSession struct {
	Username   string `json:"username"`
	IPAddress  string `json:"ip_address"`
	MACAddress string `json:"mac_address"`
	Uptime     string `json:"uptime"`
	LoginBy    string `json:"login_by"`
}
