package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	names := []string{"play", "settings", "info", "exit", "jugar", "configuracion", "salir"}

	tests := []struct {
		text      string
		kind      CommandKind
		direction int
		name      string
	}{
		{text: "up", kind: CommandMove, direction: -1},
		{text: "Go UP please", kind: CommandMove, direction: -1},
		{text: "subir", kind: CommandMove, direction: -1},
		{text: "Arriba!", kind: CommandMove, direction: -1},
		{text: "sube", kind: CommandMove, direction: -1},
		{text: "down", kind: CommandMove, direction: 1},
		{text: "baja", kind: CommandMove, direction: 1},
		{text: "abajo", kind: CommandMove, direction: 1},
		{text: "select", kind: CommandSelect},
		{text: "Seleccionar", kind: CommandSelect},
		{text: "aceptar", kind: CommandSelect},
		{text: "play", kind: CommandChoose, name: "play"},
		{text: "let's play", kind: CommandChoose, name: "play"},
		{text: "Configuración", kind: CommandChoose, name: "configuracion"},
		{text: "playground", kind: CommandUnknown},
		{text: "", kind: CommandUnknown},
		{text: "hello there", kind: CommandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd := Interpret(tt.text, names...)
			assert.Equal(t, tt.kind, cmd.Kind)
			assert.Equal(t, tt.direction, cmd.Direction)
			assert.Equal(t, tt.name, cmd.Name)
			assert.Equal(t, tt.text, cmd.Text)
		})
	}
}

func TestInterpret_MultiWordName(t *testing.T) {
	cmd := Interpret("open the high score table", "high score")
	assert.Equal(t, CommandChoose, cmd.Kind)
	assert.Equal(t, "high score", cmd.Name)

	cmd = Interpret("high", "high score")
	assert.Equal(t, CommandUnknown, cmd.Kind)
}

func TestRecorder(t *testing.T) {
	inner := &Recorder{}
	r := &Recorder{Next: inner}

	_, ok := r.Last()
	assert.False(t, ok)

	r.Announce("one")
	r.Announce("two")

	assert.Equal(t, []string{"one", "two"}, r.Messages())
	assert.Equal(t, []string{"one", "two"}, inner.Messages())

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, "two", last.Message)

	LogAnnouncer{}.Announce("smoke")
}

func TestAsync(t *testing.T) {
	rec := &Recorder{}
	a := NewAsync(rec, 8)

	a.Announce("one")
	a.Announce("two")
	a.Close()
	a.Close()

	assert.Equal(t, []string{"one", "two"}, rec.Messages())
}
