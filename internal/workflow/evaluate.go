package workflow

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/fotocheck/fotocheck/internal/gateway"
	"github.com/fotocheck/fotocheck/internal/rubric"
)

// State keys for the evaluation graph.
const (
	KeyFilename = "filename"
	KeyImage    = "image"
	KeyPrompt   = "prompt"
	KeyAgentID  = "agent_id"
	KeyFileID   = "file_id"
	KeyThreadID = "thread_id"
	KeyOutcome  = "outcome"
	KeyResult   = "result"
)

// nodeErrors records the first node failure so callers can classify it with
// errors.Is regardless of how the graph wraps errors on the way out.
type nodeErrors struct {
	err error
}

func (n *nodeErrors) record(err error) error {
	if n.err == nil {
		n.err = err
	}
	return err
}

// Evaluate scores a photo against the rubric. It validates the request,
// builds the evaluation graph (agent, upload, converse, run, normalize),
// executes it, and extracts the normalized result from the final state.
// When prompt is empty the configured rubric prompt is used.
func Evaluate(ctx context.Context, rt *Runtime, filename string, image []byte, prompt string) (*rubric.Result, error) {
	if err := validateImage(rt, filename, image); err != nil {
		return nil, err
	}
	if prompt == "" {
		prompt = rt.Rubric.Prompt
	}

	errs := &nodeErrors{}
	graph, err := buildEvaluateGraph(rt, errs)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyFilename, filename)
	initial = initial.Set(KeyImage, image)
	initial = initial.Set(KeyPrompt, prompt)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		if errs.err != nil {
			return nil, errs.err
		}
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(final)
}

func buildEvaluateGraph(rt *Runtime, errs *nodeErrors) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("fotocheck-evaluate")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"agent", agentNode(rt, errs)},
		{"upload", uploadNode(rt, errs)},
		{"converse", converseNode(rt, errs)},
		{"run", runNode(rt, errs)},
		{"normalize", normalizeNode(rt, errs)},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	for i := range len(nodes) - 1 {
		if err := graph.AddEdge(nodes[i].name, nodes[i+1].name, nil); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint("agent"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("normalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

// agentNode resolves the evaluation agent, reusing the cached handle when
// one exists.
func agentNode(rt *Runtime, errs *nodeErrors) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		agentID, err := rt.resolveAgent(ctx)
		if err != nil {
			return s, errs.record(fmt.Errorf("agent: %w", err))
		}

		return s.Set(KeyAgentID, agentID), nil
	})
}

// uploadNode uploads the photo for assistant use.
func uploadNode(rt *Runtime, errs *nodeErrors) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		filename := stringAt(s, KeyFilename)
		val, _ := s.Get(KeyImage)
		image, _ := val.([]byte)

		fileID, err := rt.Gateway.UploadFile(ctx, filename, image)
		if err != nil {
			return s, errs.record(fmt.Errorf("upload: %w", err))
		}

		rt.Logger.InfoContext(ctx, "photo uploaded", "filename", filename, "file_id", fileID)
		return s.Set(KeyFileID, fileID), nil
	})
}

// converseNode creates the thread carrying the prompt and the uploaded photo.
func converseNode(rt *Runtime, errs *nodeErrors) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		threadID, err := rt.Gateway.CreateThreadMessage(ctx, stringAt(s, KeyFileID), stringAt(s, KeyPrompt))
		if err != nil {
			return s, errs.record(fmt.Errorf("converse: %w", err))
		}

		return s.Set(KeyThreadID, threadID), nil
	})
}

// runNode executes the agent run and waits for its terminal status.
func runNode(rt *Runtime, errs *nodeErrors) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		outcome, err := rt.Gateway.RunAndPoll(ctx, stringAt(s, KeyThreadID), stringAt(s, KeyAgentID))
		if err != nil {
			return s, errs.record(fmt.Errorf("run: %w", err))
		}

		rt.Logger.InfoContext(ctx, "run complete", "thread_id", stringAt(s, KeyThreadID), "status", outcome.Status)
		return s.Set(KeyOutcome, *outcome), nil
	})
}

// normalizeNode converts the run output into a rubric result and stamps the
// agent and thread identifiers onto it.
func normalizeNode(rt *Runtime, errs *nodeErrors) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		val, ok := s.Get(KeyOutcome)
		if !ok {
			return s, errs.record(fmt.Errorf("normalize: missing %s in state", KeyOutcome))
		}
		outcome, ok := val.(gateway.RunOutcome)
		if !ok {
			return s, errs.record(fmt.Errorf("normalize: %s is not gateway.RunOutcome", KeyOutcome))
		}

		result, err := rt.Normalizer.Normalize(outcome.Output)
		if err != nil {
			return s, errs.record(fmt.Errorf("normalize: %w", err))
		}

		result.AgentID = stringAt(s, KeyAgentID)
		result.ThreadID = stringAt(s, KeyThreadID)

		return s.Set(KeyResult, *result), nil
	})
}

func extractResult(s state.State) (*rubric.Result, error) {
	val, ok := s.Get(KeyResult)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyResult)
	}

	result, ok := val.(rubric.Result)
	if !ok {
		return nil, fmt.Errorf("%s is not rubric.Result", KeyResult)
	}

	return &result, nil
}

func stringAt(s state.State, key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := val.(string)
	return str
}
