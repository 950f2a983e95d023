package viewmodels

// ToastViewData is a one-shot notification. It round-trips through the flash cookie as JSON.
type ToastViewData struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
