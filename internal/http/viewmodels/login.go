package viewmodels

const (
	DemoEmail    = "eve.holt@reqres.in"
	DemoPassword = "cityslicka"
)

type LoginViewData struct {
	Layout       LayoutData
	Email        string
	Next         string
	ErrorMessage string
	ShowDemo     bool
}
