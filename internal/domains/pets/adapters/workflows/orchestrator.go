package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	petworkflows "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/pets"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalPetWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlinePetWorkflows)(nil)
)

// TemporalPetWorkflows starts pet workflows on a Temporal cluster.
type TemporalPetWorkflows struct {
	client    client.Client
	service   ports.Service
	taskQueue string
}

// NewTemporalPetWorkflows wires a Temporal client into the orchestrator. The service is used
// to authorize removals before the workflow is started.
func NewTemporalPetWorkflows(c client.Client, service ports.Service) *TemporalPetWorkflows {
	return &TemporalPetWorkflows{client: c, service: service, taskQueue: petworkflows.PetRemovalTaskQueue}
}

// RemovePet checks ownership synchronously, then runs the removal workflow to completion.
func (o *TemporalPetWorkflows) RemovePet(ctx context.Context, input petstypes.RemovePetInput) error {
	if o == nil || o.client == nil || o.service == nil {
		return errors.New("temporal pet workflows not configured")
	}
	if _, err := o.service.AuthorizeRemoval(ctx, input); err != nil {
		return err
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildPetRemovalWorkflowID(input.ID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		petworkflows.PetRemovalWorkflow,
		petworkflows.PetRemovalWorkflowInput{PetID: input.ID, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result petworkflows.PetRemovalWorkflowResult
	return run.Get(ctx, &result)
}

// InlinePetWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlinePetWorkflows struct {
	service ports.Service
}

// NewInlinePetWorkflows wraps the pets service for synchronous execution.
func NewInlinePetWorkflows(service ports.Service) *InlinePetWorkflows {
	return &InlinePetWorkflows{service: service}
}

// RemovePet delegates to the application service without durable orchestration.
func (o *InlinePetWorkflows) RemovePet(ctx context.Context, input petstypes.RemovePetInput) error {
	if o == nil || o.service == nil {
		return errors.New("inline pet workflows not configured")
	}
	return o.service.Remove(ctx, input)
}

// One removal per pet may run at a time; a concurrent request joins the running workflow.
func buildPetRemovalWorkflowID(petID string) string {
	return fmt.Sprintf("pet-removal-%s", petID)
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
