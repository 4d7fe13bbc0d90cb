// Package program holds the fixed six-stage "Aterro Zero" checklist every
// client goes through.
package program

import (
	"github.com/google/uuid"

	"github.com/nurpe/aterrozero-consultancy/internal/model"
)

type Stage struct {
	Number int
	Title  string
	Target string
	Tasks  []string
}

var stages = []Stage{
	{
		Number: 1,
		Title:  "Mês 1 — Medir e Entender",
		Target: "Reduzir 10%",
		Tasks: []string{
			"Separação por tipo de resíduo",
			"Pesagem diária",
			"Definição de meta (g/refeição)",
			"Treinamento rápido",
		},
	},
	{
		Number: 2,
		Title:  "Mês 2 — Compras e Armazenamento",
		Target: "–10% a –15% por vencimento",
		Tasks: []string{
			"Revisão de fornecedores",
			"Frequência de compras",
			"FIFO e validade",
			"Ajustes de câmara fria",
		},
	},
	{
		Number: 3,
		Title:  "Mês 3 — Produção e Cozinha",
		Target: "–15% no preparo",
		Tasks: []string{
			"Fichas técnicas",
			"Porcionamento",
			"Aproveitamento integral",
		},
	},
	{
		Number: 4,
		Title:  "Mês 4 — Serviço e Buffet",
		Target: "–20% a –40%",
		Tasks: []string{
			"Redesenho do buffet",
			"Pratos menores",
			"Reposição fracionada",
			"Comunicação com cliente",
		},
	},
	{
		Number: 5,
		Title:  "Mês 5 — Destinação e Aterro Zero",
		Target: "+80% desvio de aterro",
		Tasks: []string{
			"Compostagem local/terceirizada",
			"Redução da coleta comum",
			"Registro de CO₂ evitado",
		},
	},
	{
		Number: 6,
		Title:  "Mês 6 — Consolidação e Certificação",
		Target: "Selo Aterro Zero Orgânico",
		Tasks: []string{
			"Consolidação de indicadores",
			"Relatório final",
			"Plano contínuo",
			"Selo Aterro Zero Orgânico",
		},
	},
}

// Stages returns a copy of the template definition.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	for i, s := range stages {
		out[i] = s
		out[i].Tasks = append([]string(nil), s.Tasks...)
	}
	return out
}

// Lookup returns the template stage with the given number.
func Lookup(number int) (Stage, bool) {
	for _, s := range Stages() {
		if s.Number == number {
			return s, true
		}
	}
	return Stage{}, false
}

// Instantiate builds the six checklist stages for clientID. newID is called
// once per program and once per item; pass uuid.New in production.
func Instantiate(clientID uuid.UUID, newID func() uuid.UUID) []model.ChecklistProgram {
	if newID == nil {
		newID = uuid.New
	}
	programs := make([]model.ChecklistProgram, 0, len(stages))
	for _, s := range stages {
		items := make([]model.ChecklistItem, 0, len(s.Tasks))
		for _, task := range s.Tasks {
			items = append(items, model.ChecklistItem{
				ID:          newID(),
				Description: task,
			})
		}
		programs = append(programs, model.ChecklistProgram{
			ID:       newID(),
			ClientID: clientID,
			Stage:    s.Number,
			Title:    s.Title,
			Target:   s.Target,
			Items:    items,
		})
	}
	return programs
}
