// Package solver is the job submission boundary. The scheduling algorithm
// itself is an external collaborator; this package only defines how a
// bundle goes out and how phase notifications and a result come back.
package solver

import (
	"context"

	"github.com/me/rota/pkg/model"
)

// Transport runs one scheduling job against a solver backend.
//
// Run blocks until the job finishes, calling notify once per phase in the
// fixed phase order before any work for that phase happens. It returns the
// raw result set on success. Cancellation is signalled through ctx; a
// cancelled run returns ctx.Err().
//
// Transports report what the solver did and nothing more: empty-result
// detection and event ordering are the controller's job.
type Transport interface {
	Run(ctx context.Context, bundle *model.InputBundle, notify func(model.JobPhase)) (*model.SolveResult, error)
}

// TablesPayload converts a bundle into the wire form POSTed to a solver:
// table name to rows of named columns.
func TablesPayload(bundle *model.InputBundle) map[string][]map[string]string {
	payload := make(map[string][]map[string]string, bundle.Len())
	for _, name := range bundle.TableNames() {
		tbl := bundle.Table(name)
		rows := make([]map[string]string, len(tbl))
		for i, row := range tbl {
			rows[i] = row
		}
		payload[string(name)] = rows
	}
	return payload
}
