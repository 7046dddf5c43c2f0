package domain

// Snapshot é a representação completa do estado (todos os usuários e causas)
// em um instante. É o documento único que o LocalStore persiste em disco e
// que o backend devolve/substitui inteiro em GET/PUT /data. Não existe
// persistência incremental: quem salva, salva o documento todo.
type Snapshot struct {
	Users  []User  `json:"users"`
	Causes []Cause `json:"causes"`
}

// FindUserByID retorna o índice do usuário no snapshot, ou -1.
func (s *Snapshot) FindUserByID(id string) int {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCauseByID retorna o índice da causa no snapshot, ou -1.
func (s *Snapshot) FindCauseByID(id string) int {
	for i := range s.Causes {
		if s.Causes[i].ID == id {
			return i
		}
	}
	return -1
}
