package viewmodels

type LayoutData struct {
	Title      string
	CSRFToken  string
	UserEmail  string
	Toast      *ToastViewData
	ActivePath string
}
