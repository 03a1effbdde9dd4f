package service

import (
	"context"
	"os"
	"strings"
	"sync"
)

// fakeAdmin is an in-memory Admin for exercising the services without a
// PostgreSQL instance or the client tools.
type fakeAdmin struct {
	mu sync.Mutex

	dumpErr    error
	dumpData   []byte
	execErrFor map[string]error // substring match against the statement
	onExec     func(sql string) // optional hook, runs before error matching
	csvErr     error
	dropErr    error
	schemaErr  error
	counts     map[string]int64

	statements []string
	csvTables  []string
	terminated bool
	dropped    bool
	schemaInit bool
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		dumpData:   []byte("PGDMP fake archive"),
		execErrFor: map[string]error{},
		counts:     map[string]int64{},
	}
}

func (f *fakeAdmin) Dump(ctx context.Context, targetPath string) error {
	if f.dumpErr != nil {
		return f.dumpErr
	}
	return os.WriteFile(targetPath, f.dumpData, 0o644)
}

func (f *fakeAdmin) ExportTableCSV(ctx context.Context, table, targetPath string) error {
	if f.csvErr != nil {
		return f.csvErr
	}
	f.mu.Lock()
	f.csvTables = append(f.csvTables, table)
	f.mu.Unlock()
	return os.WriteFile(targetPath, []byte("id\n"), 0o644)
}

func (f *fakeAdmin) TerminateOtherSessions(ctx context.Context) error {
	f.mu.Lock()
	f.terminated = true
	f.mu.Unlock()
	return nil
}

func (f *fakeAdmin) DropAndRecreate(ctx context.Context) error {
	if f.dropErr != nil {
		return f.dropErr
	}
	f.mu.Lock()
	f.dropped = true
	f.mu.Unlock()
	return nil
}

func (f *fakeAdmin) ExecStatement(ctx context.Context, sql string) error {
	f.mu.Lock()
	f.statements = append(f.statements, sql)
	f.mu.Unlock()

	if f.onExec != nil {
		f.onExec(sql)
	}

	for substr, err := range f.execErrFor {
		if strings.Contains(sql, substr) {
			return err
		}
	}
	return nil
}

func (f *fakeAdmin) CountRows(ctx context.Context, table string) (int64, error) {
	return f.counts[table], nil
}

func (f *fakeAdmin) InitSchema(ctx context.Context) error {
	if f.schemaErr != nil {
		return f.schemaErr
	}
	f.mu.Lock()
	f.schemaInit = true
	f.mu.Unlock()
	return nil
}

func (f *fakeAdmin) destructiveStatementCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, stmt := range f.statements {
		if strings.Contains(stmt, "DELETE FROM") || strings.Contains(stmt, "DROP") {
			n++
		}
	}
	if f.dropped {
		n++
	}
	return n
}
