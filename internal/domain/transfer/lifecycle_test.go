package transfer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/domain/transfer"
)

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados — camino feliz
// ──────────────────────────────────────────────────────────────────────────────

// El ciclo completo: DRAFT → PENDING_APPROVAL → APPROVED → IN_TRANSIT → RECEIVED.
func TestNext_CaminoFelizCompleto(t *testing.T) {
	steps := []struct {
		op   transfer.Operation
		want transfer.Status
	}{
		{transfer.OpSubmit, transfer.StatusPendingApproval},
		{transfer.OpApprove, transfer.StatusApproved},
		{transfer.OpShip, transfer.StatusInTransit},
		{transfer.OpReceive, transfer.StatusReceived},
	}

	current := transfer.StatusDraft
	for _, step := range steps {
		next, err := transfer.Next(current, step.op)
		require.NoError(t, err, "la operación %s debe ser legal desde %s", step.op, current)
		assert.Equal(t, step.want, next)
		current = next
	}
	assert.True(t, current.Terminal(), "RECEIVED es terminal")
}

// Cada operación tiene exactamente un estado predecesor legal (salvo cancel).
func TestNext_MatrizExhaustiva(t *testing.T) {
	all := []transfer.Status{
		transfer.StatusDraft, transfer.StatusPendingApproval, transfer.StatusApproved,
		transfer.StatusInTransit, transfer.StatusReceived, transfer.StatusCancelled,
	}
	legal := map[transfer.Operation]map[transfer.Status]transfer.Status{
		transfer.OpSubmit:  {transfer.StatusDraft: transfer.StatusPendingApproval},
		transfer.OpApprove: {transfer.StatusPendingApproval: transfer.StatusApproved},
		transfer.OpShip:    {transfer.StatusApproved: transfer.StatusInTransit},
		transfer.OpReceive: {transfer.StatusInTransit: transfer.StatusReceived},
		transfer.OpCancel: {
			transfer.StatusDraft:           transfer.StatusCancelled,
			transfer.StatusPendingApproval: transfer.StatusCancelled,
			transfer.StatusApproved:        transfer.StatusCancelled,
		},
	}

	for op, allowed := range legal {
		for _, from := range all {
			next, err := transfer.Next(from, op)
			if want, ok := allowed[from]; ok {
				require.NoError(t, err, "op=%s desde %s", op, from)
				assert.Equal(t, want, next)
				continue
			}
			require.Error(t, err, "op=%s desde %s debe rechazarse", op, from)
			var inv *transfer.InvalidTransitionError
			require.True(t, errors.As(err, &inv), "el error debe ser InvalidTransitionError")
			assert.Equal(t, op, inv.Op)
			assert.Equal(t, from, inv.Current)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Terminalidad y no-idempotencia
// ──────────────────────────────────────────────────────────────────────────────

// Ninguna operación es legal desde RECEIVED ni desde CANCELLED.
func TestNext_EstadosTerminalesNoAdmitenOperaciones(t *testing.T) {
	ops := []transfer.Operation{
		transfer.OpSubmit, transfer.OpApprove, transfer.OpShip,
		transfer.OpReceive, transfer.OpCancel,
	}
	for _, terminal := range []transfer.Status{transfer.StatusReceived, transfer.StatusCancelled} {
		require.True(t, terminal.Terminal())
		for _, op := range ops {
			_, err := transfer.Next(terminal, op)
			assert.Error(t, err, "op=%s sobre estado terminal %s", op, terminal)
		}
	}
}

// Aprobar dos veces no es no-op: el segundo approve falla porque el estado ya
// avanzó a APPROVED.
func TestNext_ApproveNoEsIdempotente(t *testing.T) {
	next, err := transfer.Next(transfer.StatusPendingApproval, transfer.OpApprove)
	require.NoError(t, err)
	require.Equal(t, transfer.StatusApproved, next)

	_, err = transfer.Next(next, transfer.OpApprove)
	require.Error(t, err)

	var inv *transfer.InvalidTransitionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, transfer.StatusApproved, inv.Current,
		"el error debe reportar el estado vigente para que el operador entienda qué pasó")
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación
// ──────────────────────────────────────────────────────────────────────────────

// Cancel es legal desde DRAFT, PENDING_APPROVAL y APPROVED; ilegal desde
// IN_TRANSIT (la mercancía ya salió) y desde los terminales.
func TestCanCancel(t *testing.T) {
	cases := map[transfer.Status]bool{
		transfer.StatusDraft:           true,
		transfer.StatusPendingApproval: true,
		transfer.StatusApproved:        true,
		transfer.StatusInTransit:       false,
		transfer.StatusReceived:        false,
		transfer.StatusCancelled:       false,
	}
	for from, want := range cases {
		assert.Equal(t, want, transfer.CanCancel(from), "desde %s", from)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ParseStatus y bloqueo de líneas
// ──────────────────────────────────────────────────────────────────────────────

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"DRAFT", "PENDING_APPROVAL", "APPROVED", "IN_TRANSIT", "RECEIVED", "CANCELLED"} {
		st, err := transfer.ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, st.String())
	}
	for _, invalid := range []string{"", "draft", "SHIPPED", "RECIBIDO"} {
		_, err := transfer.ParseStatus(invalid)
		assert.Error(t, err, "%q no es un estado válido", invalid)
	}
}

// Las líneas quedan congeladas desde submit en adelante.
func TestItemsLocked(t *testing.T) {
	assert.False(t, transfer.ItemsLocked(transfer.StatusDraft))
	for _, locked := range []transfer.Status{
		transfer.StatusPendingApproval, transfer.StatusApproved,
		transfer.StatusInTransit, transfer.StatusReceived, transfer.StatusCancelled,
	} {
		assert.True(t, transfer.ItemsLocked(locked), "desde %s", locked)
	}
}
