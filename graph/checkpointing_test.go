package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langgraphlab/store"
	"github.com/smallnest/langgraphlab/store/memory"
)

func TestCheckpointListenerSavesEachStep(t *testing.T) {
	ms := memory.NewMemoryCheckpointStore()
	g := newGreetingGraph()
	g.AddListener(NewCheckpointListener(ms, nil))
	runnable, err := g.Compile()
	require.NoError(t, err)

	ctx := context.Background()
	_, err = runnable.InvokeWithConfig(ctx, greetingState{Name: "Alice"}, &Config{RunID: "greet-1", ThreadID: "chat-7"})
	require.NoError(t, err)

	cps, err := ms.List(ctx, "greet-1")
	require.NoError(t, err)
	require.Len(t, cps, 2)

	assert.Equal(t, "greet", cps[0].NodeName)
	assert.Equal(t, 1, cps[0].Version)
	assert.Equal(t, "enhance", cps[1].NodeName)
	assert.Equal(t, 2, cps[1].Version)
	assert.Equal(t, "chat-7", cps[1].Metadata[store.MetaThreadID])

	last, err := DecodeState[greetingState](cps[1])
	require.NoError(t, err)
	assert.Equal(t, "Hello, Alice! How are you?", last.Greeting)

	byThread, err := ms.List(ctx, "chat-7")
	require.NoError(t, err)
	assert.Len(t, byThread, 2)
}

func TestResumeFromCheckpoint(t *testing.T) {
	ms := memory.NewMemoryCheckpointStore()
	ctx := context.Background()

	g := newGreetingGraph()
	runnable, err := g.Compile()
	require.NoError(t, err)

	cp := &store.Checkpoint{
		ID:       "cp-1",
		NodeName: "greet",
		State:    greetingState{Name: "Carol", Greeting: "Hello, Carol!"},
		Metadata: map[string]any{store.MetaExecutionID: "resume-run", "step": 0},
	}
	require.NoError(t, ms.Save(ctx, cp))
	loaded, err := ms.Load(ctx, "cp-1")
	require.NoError(t, err)

	var steps []int
	final, err := runnable.ResumeFrom(ctx, loaded, &Config{Listeners: []NodeListener{
		NodeListenerFunc(func(ctx context.Context, event NodeEvent, node string, _ any, _ error) {
			if event != NodeEventStart {
				return
			}
			info, _ := RunInfoFromContext(ctx)
			assert.Equal(t, "resume-run", info.RunID)
			assert.Equal(t, "enhance", node)
			steps = append(steps, info.Step)
		}),
	}})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Carol! How are you?", final.Greeting)
	assert.Equal(t, []int{1}, steps)

	_, err = runnable.ResumeFrom(ctx, &store.Checkpoint{NodeName: "unknown"}, nil)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
}

func TestResumeKeepsVersionOrder(t *testing.T) {
	type jobState struct {
		Steps []string `json:"steps"`
	}
	ms := memory.NewMemoryCheckpointStore()
	ctx := context.Background()
	errCrash := errors.New("crash")

	// c fails on its first attempt, d on its first two.
	attempts := map[string]int{}
	failUntil := map[string]int{"c": 1, "d": 2}
	step := func(name string) NodeFunc[jobState] {
		return func(context.Context, jobState) (Update, error) {
			attempts[name]++
			if attempts[name] <= failUntil[name] {
				return nil, errCrash
			}
			return Update{"steps": name}, nil
		}
	}

	g := NewStateGraph[jobState](MustStructSchema(jobState{}, WithReducer("steps", AppendReducer)))
	for _, n := range []string{"a", "b", "c", "d"} {
		g.AddNode(n, "", step(n))
	}
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "d")
	g.AddEdge("d", END)
	g.SetEntryPoint("a")
	g.AddListener(NewCheckpointListener(ms, nil))
	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.InvokeWithConfig(ctx, jobState{}, &Config{RunID: "job"})
	require.ErrorIs(t, err, errCrash)

	resume := func() (jobState, error) {
		cps, err := ms.List(ctx, "job")
		require.NoError(t, err)
		return runnable.ResumeFrom(ctx, store.Latest(cps), nil)
	}

	_, err = resume()
	require.ErrorIs(t, err, errCrash)
	_, err = resume()
	require.ErrorIs(t, err, errCrash)

	final, err := resume()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, final.Steps)
	assert.Equal(t, 1, attempts["a"])
	assert.Equal(t, 1, attempts["b"])
	assert.Equal(t, 2, attempts["c"])

	cps, err := ms.List(ctx, "job")
	require.NoError(t, err)
	var nodes []string
	var versions []int
	for _, cp := range cps {
		nodes = append(nodes, cp.NodeName)
		versions = append(versions, cp.Version)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, nodes)
	assert.Equal(t, []int{1, 2, 3, 4}, versions)
}

func TestDecodeStateFromGenericJSON(t *testing.T) {
	cp := &store.Checkpoint{State: map[string]any{"name": "Dave", "greeting": "Hi"}}
	s, err := DecodeState[greetingState](cp)
	require.NoError(t, err)
	assert.Equal(t, greetingState{Name: "Dave", Greeting: "Hi"}, s)
}
