// Package repomanager wires repository implementations to a database handle.
// Services ask the manager for a repository bound to either the shared
// *sql.DB or a transaction, so the same code runs inside and outside dbx.WithTx.
package repomanager

import (
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
