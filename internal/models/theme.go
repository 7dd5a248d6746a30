package models

// Theme holds a storefront color palette managed via the admin panel.
// Exactly one theme is active at any time, across the whole store.
type Theme struct {
	BaseModel
	Name        string `json:"name"`
	Primary     string `json:"primary"`
	Accent      string `json:"accent"`
	Background  string `json:"background"`
	TextColor   string `json:"text_color"`
	DarkVariant bool   `json:"dark_variant"`
	IsActive    bool   `json:"is_active"`
}

func (Theme) FlagColumn() string { return "is_active" }

// ScopeColumn is empty: the active-theme invariant spans the whole table.
func (Theme) ScopeColumn() string { return "" }
