// Package file provides file-based persistence for workflow definitions.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vendura/automation/pkg/models"
	"github.com/vendura/automation/pkg/persistence"
)

// Persistence stores each workflow as one JSON file under root/workflows.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a file store rooted at the given path. A "file://"
// prefix is stripped.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

func (p *Persistence) workflowsDir() string {
	return filepath.Join(p.root, "workflows")
}

func (p *Persistence) workflowPath(id string) string {
	return filepath.Join(p.workflowsDir(), id+".json")
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries, err := fs.Glob(os.DirFS(p.workflowsDir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		workflow, err := p.readWorkflow(strings.TrimSuffix(entry, ".json"))
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.readWorkflow(id)
}

func (p *Persistence) ActiveWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := p.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if workflow.IsExecutable() {
			active = append(active, workflow)
		}
	}

	return active, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.workflowsDir(), 0o755); err != nil {
		return fmt.Errorf("create workflows directory: %w", err)
	}

	payload, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}

	if err := os.WriteFile(p.workflowPath(workflow.ID), payload, 0o644); err != nil {
		return fmt.Errorf("write workflow file: %w", err)
	}

	return nil
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.Remove(p.workflowPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return persistence.ErrWorkflowNotFound
	}

	return err
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) readWorkflow(id string) (*models.Workflow, error) {
	payload, err := os.ReadFile(p.workflowPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("read workflow file: %w", err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(payload, &workflow); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}

	return &workflow, nil
}
