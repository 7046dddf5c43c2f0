package domain

// Session identifica o usuário autenticado durante uma sessão de UI.
// É um valor explícito, devolvido por Authenticate e passado a cada operação
// que precisa da identidade ou do token do chamador — não existe estado
// global de sessão no processo.
//
// Token fica vazio quando a autenticação aconteceu pelo fallback local
// (serviço remoto inalcançável); nesse caso as operações seguintes também
// tendem a cair no store local, que não exige token.
type Session struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	Token  string   `json:"token,omitempty"`
}
