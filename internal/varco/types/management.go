package types

type CreateCodeRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	DateIn  string `json:"date_in"`  // YYYY-MM-DD
	DateOut string `json:"date_out"` // YYYY-MM-DD
}

type CreateCodeResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	DateIn  string `json:"date_in"`
	DateOut string `json:"date_out"`
}

// CodeListEntry is one row of the management view: the record joined with
// the activation flag of every known zone.
type CodeListEntry struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Surname string          `json:"surname"`
	DateIn  string          `json:"date_in"`
	DateOut string          `json:"date_out"`
	Zones   map[string]bool `json:"zones"`
}

type ListCodesResponse struct {
	Codes []CodeListEntry `json:"codes"`
	Count int             `json:"count"`
}

type SetZoneRequest struct {
	Active bool `json:"active"`
}

type ZoneStateResponse struct {
	Code   string `json:"code"`
	Zone   string `json:"zone"`
	Active bool   `json:"active"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
