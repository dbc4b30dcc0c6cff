package workflow

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/fotocheck/fotocheck/internal/rubric"
	"github.com/fotocheck/fotocheck/pkg/formatting"
)

// State keys for the improvement graph.
const (
	KeyJob        = "job"
	KeyDerivation = "derivation"
	KeyEdited     = "edited"
)

// ImproveJob describes a single photo correction request. PromptOverride,
// when non-empty, is sent verbatim and suppresses derivation. Size defaults
// to the largest allowed output dimension.
type ImproveJob struct {
	Filename       string
	Image          []byte
	PromptOverride string
	Notes          string
	CriteriaScores map[string]int
	Size           string
}

// ImproveResult carries the corrected image and the prompt that produced it.
type ImproveResult struct {
	Image        []byte
	Prompt       string
	AppliedFixes []string
}

// Improve derives an edit prompt from evaluation output and applies it
// through the image edit deployment. Validation happens before any remote
// call; the graph runs derive then edit.
func Improve(ctx context.Context, rt *Runtime, job ImproveJob) (*ImproveResult, error) {
	if err := validateImage(rt, job.Filename, job.Image); err != nil {
		return nil, err
	}
	if job.Size == "" {
		job.Size = "1024x1024"
	}
	if !rt.Config.AllowedSize(job.Size) {
		return nil, fmt.Errorf("%w: size must be one of %v", ErrInvalidRequest, rt.Config.AllowedSizes)
	}

	errs := &nodeErrors{}
	graph, err := buildImproveGraph(rt, errs)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyJob, job)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		if errs.err != nil {
			return nil, errs.err
		}
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractImproveResult(final)
}

func buildImproveGraph(rt *Runtime, errs *nodeErrors) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("fotocheck-improve")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("derive", deriveNode(rt, errs)); err != nil {
		return nil, err
	}
	if err := graph.AddNode("edit", editNode(rt, errs)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("derive", "edit", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("derive"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("edit"); err != nil {
		return nil, err
	}

	return graph, nil
}

// deriveNode maps scores and notes to an edit prompt.
func deriveNode(rt *Runtime, errs *nodeErrors) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		job, err := extractJob(s)
		if err != nil {
			return s, errs.record(fmt.Errorf("derive: %w", err))
		}

		derivation := rubric.Derive(rt.Rubric, job.PromptOverride, job.CriteriaScores, job.Notes)

		rt.Logger.InfoContext(ctx, "edit prompt derived",
			"filename", job.Filename,
			"fixes", len(derivation.Fixes),
			"override", job.PromptOverride != "",
		)

		return s.Set(KeyDerivation, derivation), nil
	})
}

// editNode applies the derived prompt through the image edit deployment.
func editNode(rt *Runtime, errs *nodeErrors) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		job, err := extractJob(s)
		if err != nil {
			return s, errs.record(fmt.Errorf("edit: %w", err))
		}

		val, ok := s.Get(KeyDerivation)
		if !ok {
			return s, errs.record(fmt.Errorf("edit: missing %s in state", KeyDerivation))
		}
		derivation, ok := val.(rubric.Derivation)
		if !ok {
			return s, errs.record(fmt.Errorf("edit: %s is not rubric.Derivation", KeyDerivation))
		}

		edited, err := rt.Gateway.EditImage(ctx, job.Image, job.Filename, derivation.Prompt, job.Size)
		if err != nil {
			return s, errs.record(fmt.Errorf("edit: %w", err))
		}

		rt.Logger.InfoContext(ctx, "photo corrected",
			"filename", job.Filename,
			"size", job.Size,
			"bytes", len(edited),
		)

		return s.Set(KeyEdited, edited), nil
	})
}

func extractJob(s state.State) (ImproveJob, error) {
	val, ok := s.Get(KeyJob)
	if !ok {
		return ImproveJob{}, fmt.Errorf("missing %s in state", KeyJob)
	}

	job, ok := val.(ImproveJob)
	if !ok {
		return ImproveJob{}, fmt.Errorf("%s is not ImproveJob", KeyJob)
	}

	return job, nil
}

func extractImproveResult(s state.State) (*ImproveResult, error) {
	val, ok := s.Get(KeyEdited)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyEdited)
	}
	edited, ok := val.([]byte)
	if !ok {
		return nil, fmt.Errorf("%s is not []byte", KeyEdited)
	}

	derivationVal, ok := s.Get(KeyDerivation)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyDerivation)
	}
	derivation, ok := derivationVal.(rubric.Derivation)
	if !ok {
		return nil, fmt.Errorf("%s is not rubric.Derivation", KeyDerivation)
	}

	return &ImproveResult{
		Image:        edited,
		Prompt:       derivation.Prompt,
		AppliedFixes: derivation.Fixes,
	}, nil
}

func validateImage(rt *Runtime, filename string, image []byte) error {
	if filename == "" {
		return fmt.Errorf("%w: filename required", ErrInvalidRequest)
	}
	if len(image) == 0 {
		return fmt.Errorf("%w: image required", ErrInvalidRequest)
	}
	if max := rt.Config.MaxImageSizeBytes(); int64(len(image)) > max {
		return fmt.Errorf("%w: image exceeds %s", ErrInvalidRequest, formatting.FormatBytes(max, 0))
	}
	return nil
}
