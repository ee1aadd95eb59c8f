package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/config"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/logger"
	"github.com/LeJamon/goMIXR/internal/rpc"
)

type lockedLedger struct {
	mu sync.Mutex
	e  *ledger.Engine
}

func (l *lockedLedger) Exec(fn func(e *ledger.Engine) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.e)
}

func newRPCServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := ledger.Genesis(ledger.DefaultParams(), nil)
	require.NoError(t, err)
	l := &lockedLedger{e: ledger.NewEngine(st, ledger.Config{Logger: logger.Discard()})}
	ts := httptest.NewServer(rpc.NewServer(rpc.Options{Ledger: l, Logger: logger.Discard()}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rpcCaller = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestClientCall(t *testing.T) {
	ts := newRPCServer(t)
	c := NewClient(ts.URL, 5*time.Second)

	raw, err := c.Call(context.Background(), "server_info", nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"seq":0`)

	_, err = c.Call(context.Background(), "nope", nil)
	var rpcErr *rpc.RpcError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, rpc.CodeMethodNotFound, rpcErr.Code)
}

func TestRPCCommands(t *testing.T) {
	ts := newRPCServer(t)

	out, err := execute(t, "rpc", "--url", ts.URL, "server_info")
	require.NoError(t, err)
	assert.Contains(t, out, `"reward_ceiling": 10`)

	_, err = execute(t, "rpc", "--url", ts.URL, "deposit", "0x00000000000000000000000000000000000000a1", "10")
	assert.ErrorContains(t, err, "--caller is required")

	_, err = execute(t, "rpc", "--url", ts.URL, "--caller", "0x0000000000000000000000000000000000000003",
		"set-minimum-fee", "0.01")
	assert.ErrorContains(t, err, "unauthorized")

	_, err = execute(t, "rpc", "--url", ts.URL, "--caller", "0x0000000000000000000000000000000000000003",
		"set-targets", "nonsense")
	assert.ErrorContains(t, err, "asset=proportion")
}

func TestKeysNew(t *testing.T) {
	out, err := execute(t, "keys", "new")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "address:     0x"))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixrd.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := config.LoadConfig(config.ConfigPaths{Main: path})
	require.NoError(t, err)
	assert.Equal(t, "pebble", cfg.Storage.Backend)

	_, err = execute(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mixrd version "+version)
}

func sampleSnapshot() *ledger.Snapshot {
	return &ledger.Snapshot{
		Seq:                    4,
		Decimals:               18,
		MinimumFee:             "0.001",
		DeviationCeiling:       "1",
		Supply:                 "1000",
		FeePool:                "3",
		RewardCeiling:          10,
		MinimumNominationStake: "100",
		Assets: []ledger.AssetRecord{{
			Address: "0x00000000000000000000000000000000000000a1", Symbol: "XUSD", Decimals: 18,
			Target: "1", Balance: "1000", DepositFee: "0.003", RedemptionFee: "0.003",
		}},
		Agents: []ledger.AgentRecord{{Address: "0x000000000000000000000000000000000000000a", Name: "alpha"}},
		Stakes: []ledger.StakeRecord{{
			Agent: "0x000000000000000000000000000000000000000a", Backer: "0x0000000000000000000000000000000000000071", Amount: "500",
		}},
		Ranking: []ledger.RankRecord{{Agent: "0x000000000000000000000000000000000000000a", Value: "500"}},
	}
}

func TestCompareSnapshots(t *testing.T) {
	a := sampleSnapshot()
	assert.Empty(t, CompareSnapshots(a, sampleSnapshot()))

	b := sampleSnapshot()
	b.Seq = 5
	b.FeePool = "0"
	b.Agents = nil
	b.Rewards = []ledger.RewardRecord{{Backer: "0x0000000000000000000000000000000000000071", Amount: "3"}}

	diffs := CompareSnapshots(a, b)
	require.Len(t, diffs, 4)
	assert.Equal(t, Diff{Kind: "removed", Path: "agents/0x000000000000000000000000000000000000000a/contact"}, diffs[0])
	assert.Equal(t, "removed", diffs[1].Kind)
	assert.Equal(t, Diff{Kind: "modified", Path: "fee_pool", Left: "3", Right: "0"}, diffs[2])
	assert.Equal(t, Diff{Kind: "added", Path: "rewards/0x0000000000000000000000000000000000000071", Right: "3"}, diffs[3])
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, s *ledger.Snapshot) string {
		var buf bytes.Buffer
		require.NoError(t, jsonEncode(&buf, s))
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
		return path
	}
	b := sampleSnapshot()
	b.Supply = "2000"

	out, err := execute(t, "compare", write("a.json", sampleSnapshot()), write("b.json", b))
	require.NoError(t, err)
	assert.Contains(t, out, "~ supply: 1000 -> 2000")
	assert.Contains(t, out, "0 added, 0 removed, 1 modified")
}

func TestVerifySnapshot(t *testing.T) {
	require.NoError(t, verifySnapshot(sampleSnapshot()))

	bad := sampleSnapshot()
	bad.Ranking[0].Value = "400"
	assert.Error(t, verifySnapshot(bad))
}
