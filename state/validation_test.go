package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameValidator_Valid(t *testing.T) {
	assert.NoError(t, NameValidator("1"))
	assert.NoError(t, NameValidator("ab_cd"))
	assert.NoError(t, NameValidator("abcd-a.com"))
	assert.NoError(t, NameValidator("AS100"))
}

func TestNameValidator_Invalid(t *testing.T) {
	assert.Error(t, NameValidator("node name"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("\t"))
	assert.Error(t, NameValidator("abcd-a.com\\hi"))
	assert.Error(t, NameValidator(strings.Repeat("a", 200)))
}

func sampleConfig(t *testing.T) *TopologyCfg {
	cfg, err := ParseTopologyConfig([]byte(sampleTopology))
	require.NoError(t, err)
	return cfg
}

func TestTopologyConfigValidator_DuplicateId(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Nodes = append(cfg.Nodes, NodeCfg{Id: "l12"})
	assert.ErrorContains(t, TopologyConfigValidator(cfg), "duplicate node/link id: l12")
}

func TestTopologyConfigValidator_DuplicateSystem(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Systems = append(cfg.Systems, SystemCfg{Name: "AS100", Protocol: ProtocolRIP, Members: []string{"r1"}})
	assert.ErrorIs(t, TopologyConfigValidator(cfg), ErrDuplicateAS)
}

func TestLinkConfigValidator(t *testing.T) {
	cfg := sampleConfig(t)
	good := cfg.Links[0]

	l := good
	l.Destination = "r9"
	assert.ErrorContains(t, LinkConfigValidator(cfg, &l), "node r9 not defined")

	l = good
	l.Destination = l.Source
	assert.ErrorContains(t, LinkConfigValidator(cfg, &l), "source and destination are both r1")

	l = good
	l.Bandwidth = 0
	assert.ErrorContains(t, LinkConfigValidator(cfg, &l), "bandwidth must be positive")

	l = good
	l.Layers = Layer(8)
	assert.ErrorContains(t, LinkConfigValidator(cfg, &l), "unknown layer")
}

func TestNodeConfigValidator(t *testing.T) {
	assert.NoError(t, NodeConfigValidator(&NodeCfg{Id: "h1", Kind: KindHost}))
	assert.ErrorContains(t, NodeConfigValidator(&NodeCfg{Id: "h1", Kind: NodeKind(9)}), "unknown node kind")
	assert.Error(t, NodeConfigValidator(&NodeCfg{Id: "h1", MAC: "zz:zz"}))
}

func TestSystemConfigValidator(t *testing.T) {
	cfg := sampleConfig(t)
	groups, err := ParseGroups(cfg.Groups, cfg.Symbols())
	require.NoError(t, err)

	sys := SystemCfg{Name: "rip", Protocol: ProtocolRIP, Members: []string{"routers"}}
	assert.NoError(t, SystemConfigValidator(cfg, groups, &sys))

	bad := sys
	bad.Protocol = Protocol(42)
	assert.ErrorContains(t, SystemConfigValidator(cfg, groups, &bad), "unknown protocol")

	bad = sys
	bad.Protocol = 0
	assert.ErrorContains(t, SystemConfigValidator(cfg, groups, &bad), "missing protocol")

	bad = sys
	bad.Areas = []AreaCfg{{Name: "a1", Members: []string{"r1"}}}
	assert.ErrorContains(t, SystemConfigValidator(cfg, groups, &bad), "RIP does not support areas")

	bad = SystemCfg{Name: "ospf", Protocol: ProtocolOSPF, Members: []string{"r1"},
		Areas: []AreaCfg{{Name: "a1", Members: []string{"r2"}}}}
	assert.ErrorContains(t, SystemConfigValidator(cfg, groups, &bad), "r2 is not a member of the system")

	bad = SystemCfg{Name: "ospf", Protocol: ProtocolOSPF, Members: []string{"r1"},
		Areas: []AreaCfg{{Name: "a1", Members: []string{"r1"}}, {Name: "a1", Members: []string{"r1"}}}}
	assert.ErrorContains(t, SystemConfigValidator(cfg, groups, &bad), "duplicate area a1")

	bad = sys
	bad.LinkOverride = []LinkOverrideCfg{{Link: "l1s"}}
	assert.ErrorContains(t, SystemConfigValidator(cfg, groups, &bad), "non-member link l1s")

	zero := 0
	bad = sys
	bad.NodeOverride = []NodeOverrideCfg{{Node: "r1", LoadBalance: &zero}}
	assert.ErrorContains(t, SystemConfigValidator(cfg, groups, &bad), "lb_paths must be at least 1")
}
