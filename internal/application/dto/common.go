package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

// DefaultPage aplica valores por defecto si Skip/Limit no vienen.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Limit > 1000 {
		p.Limit = 1000
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
