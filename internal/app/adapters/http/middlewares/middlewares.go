package middlewares

type Middlewares struct{}

func New() *Middlewares {
	return &Middlewares{}
}
