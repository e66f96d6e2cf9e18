// ABOUTME: Tests for request dispatch, error mapping, and observation
// ABOUTME: Verifies the envelope is always produced, even on panic

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/auth"
)

type observation struct {
	method, outcome string
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingObserver) ObserveRPC(method, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{method, outcome})
}

func TestDispatch_EchoesID(t *testing.T) {
	d := newTestDispatcher(t, seedStore(t), nil)

	for _, id := range []string{`1`, `"abc"`, `null`} {
		resp := d.Dispatch(context.Background(), acme, Request{JSONRPC: "2.0", Method: MethodInitialize, ID: json.RawMessage(id)})
		assert.Equal(t, "2.0", resp.JSONRPC)
		assert.Equal(t, id, string(resp.ID))
	}
}

func TestDispatch_OmitsAbsentID(t *testing.T) {
	d := newTestDispatcher(t, seedStore(t), nil)

	resp := d.Dispatch(context.Background(), acme, Request{Method: MethodInitialize})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotContains(t, m, "id")
	assert.NotContains(t, m, "error")
	assert.Contains(t, m, "result")
}

func TestDispatch_UnknownMethod(t *testing.T) {
	obs := &recordingObserver{}
	d := newTestDispatcher(t, seedStore(t), obs)

	resp := call(t, d, acme, "resources/list", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeDomainError, resp.Error.Code)
	assert.Equal(t, "Unknown method: resources/list", resp.Error.Message)
	assert.Equal(t, []observation{{"unknown", OutcomeDomainError}}, obs.obs)
}

func TestDispatch_StoreFailureIsInternal(t *testing.T) {
	s := seedStore(t)
	s.SetError("ListPromptsWithDefault", errors.New("relation prompts does not exist"))
	obs := &recordingObserver{}
	d := newTestDispatcher(t, s, obs)

	resp := call(t, d, acme, MethodPromptsList, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Equal(t, "Internal error", resp.Error.Message)
	assert.Nil(t, resp.Result)
	assert.Equal(t, []observation{{MethodPromptsList, OutcomeInternalError}}, obs.obs)
}

func TestDispatch_WrappedDomainError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("wrapped", func(context.Context, auth.Principal, json.RawMessage) (any, error) {
		return nil, errors.Join(errors.New("context"), NotFound("Thing not found"))
	})
	d := NewDispatcher(reg, nil, nil)

	resp := call(t, d, acme, "wrapped", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeDomainError, resp.Error.Code)
	assert.Equal(t, "Thing not found", resp.Error.Message)
}

func TestDispatch_RecoversPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Register("explode", func(context.Context, auth.Principal, json.RawMessage) (any, error) {
		panic("boom")
	})
	obs := &recordingObserver{}
	d := NewDispatcher(reg, nil, obs)

	var resp Response
	require.NotPanics(t, func() { resp = call(t, d, acme, "explode", nil) })
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Equal(t, "Internal error", resp.Error.Message)
	assert.Equal(t, []observation{{"explode", OutcomeInternalError}}, obs.obs)
}

func TestDispatch_ObservesSuccess(t *testing.T) {
	obs := &recordingObserver{}
	d := newTestDispatcher(t, seedStore(t), obs)

	call(t, d, acme, MethodToolsList, nil)
	assert.Equal(t, []observation{{MethodToolsList, OutcomeOK}}, obs.obs)
}
