// ABOUTME: Built-in workout catalog and programs.
// ABOUTME: Beginner home and gym rotations with their exercises.
package workouts

import (
	"fmt"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
)

// Catalog resolves workouts and programs by id.
type Catalog struct {
	Workouts []models.Workout
	Programs []models.WorkoutProgram
}

// Workout returns the workout with id.
func (c *Catalog) Workout(id string) (*models.Workout, error) {
	for i := range c.Workouts {
		if c.Workouts[i].ID == id {
			return &c.Workouts[i], nil
		}
	}
	return nil, fmt.Errorf("workout not found: %s", id)
}

// Program returns the program with id.
func (c *Catalog) Program(id string) (*models.WorkoutProgram, error) {
	for i := range c.Programs {
		if c.Programs[i].ID == id {
			return &c.Programs[i], nil
		}
	}
	return nil, fmt.Errorf("program not found: %s", id)
}

// Validate checks that every program has a non-empty rotation of known workouts.
func (c *Catalog) Validate() error {
	for _, p := range c.Programs {
		if len(p.Rotation) == 0 {
			return fmt.Errorf("program %s: %w", p.ID, ErrEmptyRotation)
		}
		for _, id := range p.Rotation {
			if _, err := c.Workout(id); err != nil {
				return fmt.Errorf("program %s: %w", p.ID, err)
			}
		}
	}
	return nil
}

func ex(name string, sets int, reps string, rest int, tips string) models.Exercise {
	return models.Exercise{Name: name, Sets: sets, RepsOrTime: reps, RestSeconds: rest, Tips: tips}
}

// Builtin is the shipped catalog.
var Builtin = &Catalog{
	Workouts: []models.Workout{
		{
			ID: "casa-a-ini", Name: "Casa - Treino A (Corpo Todo)", Goal: "Resistência",
			DurationMinutes: 25, Level: "Iniciante", Location: "Casa", SuggestedDays: []string{"Segunda"},
			Exercises: []models.Exercise{
				ex("Polichinelos", 1, "2 min", 30, "Aquecimento cardio"),
				ex("Mobilidade Ombro/Quadril", 1, "2 min", 0, "Movimente em círculos"),
				ex("Agachamento Livre", 3, "12-15", 60, "Mantenha as costas retas"),
				ex("Flexão de Braços (Joelhos)", 3, "8-12", 60, "Cotovelos a 45 graus"),
				ex("Remada com Toalha", 3, "10-15", 60, "Puxe contra a resistência da toalha"),
				ex("Prancha", 3, "30-45s", 60, "Core contraído"),
				ex("Alongamento Final", 1, "3 min", 0, "Relaxe a musculatura"),
			},
		},
		{
			ID: "casa-b-ini", Name: "Casa - Treino B (Pernas + Core)", Goal: "Hipertrofia",
			DurationMinutes: 25, Level: "Iniciante", Location: "Casa", SuggestedDays: []string{"Quarta"},
			Exercises: []models.Exercise{
				ex("Afundo Alternado", 3, "10-12 cada", 60, "Joelho de trás quase encosta no chão"),
				ex("Elevação Pélvica", 3, "12-15", 60, "Contraia o glúteo no topo"),
				ex("Panturrilha em pé", 3, "15-20", 45, "Amplitude máxima"),
				ex("Abdominal Bicicleta", 3, "20-30", 60, "Giro controlado do tronco"),
				ex("Prancha Lateral", 2, "20-30s cada", 45, "Quadril alto"),
			},
		},
		{
			ID: "casa-c-ini", Name: "Casa - Treino C (Upper + Cardio)", Goal: "Resistência",
			DurationMinutes: 25, Level: "Iniciante", Location: "Casa", SuggestedDays: []string{"Sexta"},
			Exercises: []models.Exercise{
				ex("Flexão de Braços", 3, "8-12", 60, "Mantenha o corpo alinhado"),
				ex("Pike Push-up", 3, "8-12", 60, "Foco nos ombros"),
				ex("Remada Curvada (Garrafas)", 3, "10-15", 60, "Esmague as escápulas"),
				ex("Corrida Estacionária", 6, "30s", 30, "Finisher: Intensidade alta"),
				ex("Alongamento", 1, "5 min", 0, "Foco em membros superiores"),
			},
		},
		{
			ID: "casa-mob-ini", Name: "Mobilidade Express", Goal: "Mobilidade",
			DurationMinutes: 15, Level: "Iniciante", Location: "Casa", SuggestedDays: []string{"Terça", "Quinta"},
			Exercises: []models.Exercise{
				ex("Gato-Vaca", 1, "2 min", 0, "Mobilidade de coluna"),
				ex("Abertura de Quadril", 2, "1 min cada", 15, "Posição do corredor"),
				ex("Mobilidade Torácica", 2, "12-15 reps", 15, "Giro no chão"),
				ex("Criança (Alongamento)", 1, "2 min", 0, "Respire fundo"),
			},
		},
		{
			ID: "acad-u1-ini", Name: "Academia - Upper 1", Goal: "Força",
			DurationMinutes: 45, Level: "Iniciante", Location: "Academia", SuggestedDays: []string{"Segunda"},
			Exercises: []models.Exercise{
				ex("Supino Reto (Halter ou Barra)", 3, "6-10", 90, "Foco no peitoral"),
				ex("Puxada Aberta (Pulldown)", 3, "8-12", 90, "Desça até o peito"),
				ex("Desenvolvimento c/ Halteres", 3, "8-12", 90, "Coluna apoiada no banco"),
				ex("Remada Baixa", 3, "8-12", 90, "Cotovelos rentes ao corpo"),
				ex("Rosca Direta c/ Halteres", 2, "10-15", 60, "Sem balançar o corpo"),
				ex("Tríceps Polia", 2, "10-15", 60, "Estenda totalmente o braço"),
			},
		},
		{
			ID: "acad-l1-ini", Name: "Academia - Lower 1", Goal: "Força",
			DurationMinutes: 45, Level: "Iniciante", Location: "Academia", SuggestedDays: []string{"Terça"},
			Exercises: []models.Exercise{
				ex("Agachamento Livre (Barra)", 3, "6-10", 120, "Core ativo"),
				ex("Leg Press 45", 3, "10-15", 90, "Pés largura dos ombros"),
				ex("Mesa Flexora", 3, "10-15", 90, "Foco em posterior"),
				ex("Panturrilha no Leg Press", 3, "12-20", 60, "Carga moderada"),
				ex("Prancha Abdominal", 3, "30-60s", 60, "Corpo reto"),
			},
		},
		{
			ID: "acad-u2-ini", Name: "Academia - Upper 2", Goal: "Hipertrofia",
			DurationMinutes: 45, Level: "Iniciante", Location: "Academia", SuggestedDays: []string{"Quinta"},
			Exercises: []models.Exercise{
				ex("Supino Inclinado c/ Halteres", 3, "8-12", 90, "Foco em peitoral superior"),
				ex("Remada Curvada", 3, "8-12", 90, "Puxe em direção ao umbigo"),
				ex("Elevação Lateral", 3, "12-15", 60, "Braços levemente flexionados"),
				ex("Face Pull", 3, "12-15", 60, "Foco em deltoide posterior"),
				ex("Rosca Martelo", 2, "10-12", 60, "Pegada neutra"),
				ex("Tríceps Testa", 2, "10-12", 60, "Cuidado com os cotovelos"),
			},
		},
		{
			ID: "acad-l2-ini", Name: "Academia - Lower 2", Goal: "Hipertrofia",
			DurationMinutes: 45, Level: "Iniciante", Location: "Academia", SuggestedDays: []string{"Sexta"},
			Exercises: []models.Exercise{
				ex("Levantamento Terra (Sumô ou Trad)", 3, "6-10", 120, "Foco em posterior e glúteos"),
				ex("Cadeira Extensora", 3, "12-15", 90, "Finalize o movimento"),
				ex("Cadeira Abdutora", 3, "15-20", 60, "Postura ereta"),
				ex("Panturrilha Sentado", 3, "15-20", 60, "Explosão na subida"),
				ex("Abdominal Infra", 3, "12-15", 60, "Controle a descida"),
			},
		},
	},
	Programs: []models.WorkoutProgram{
		{
			ID: "prog-casa-ini", Name: "Casa Iniciante 3x", Location: "Casa", Level: "Iniciante",
			ActiveDays: calendar.NewWeekdaySet(time.Monday, time.Wednesday, time.Friday),
			Rotation:   []string{"casa-a-ini", "casa-b-ini", "casa-c-ini"},
		},
		{
			ID: "prog-acad-ini", Name: "Academia Iniciante 4x", Location: "Academia", Level: "Iniciante",
			ActiveDays: calendar.NewWeekdaySet(time.Monday, time.Tuesday, time.Thursday, time.Friday),
			Rotation:   []string{"acad-u1-ini", "acad-l1-ini", "acad-u2-ini", "acad-l2-ini"},
		},
	},
}
