package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphwalk/pkg/algorithms"
	"github.com/dd0wney/cluso-graphwalk/pkg/holdout"
	"github.com/dd0wney/cluso-graphwalk/pkg/walks"
)

const fullJob = `
name: butyricimonas
cache_path: /data/graphs
source:
  dataset:
    repository: string
    name: ButyricimonasSynergistica
walks:
  length: 40
  iterations: 10
  change_node_type_weight: 2.5
  return_weight: 0.5
  output: walks.tsv.gz
holdout:
  kind: random
  train_size: 0.7
  random_state: 7
  output: splits
  metrics: [jaccard, adamic_adar]
`

func TestParse_FullJob(t *testing.T) {
	job, err := Parse(strings.NewReader(fullJob))
	require.NoError(t, err)

	assert.Equal(t, "butyricimonas", job.Name)
	require.NotNil(t, job.Source.Dataset)
	assert.Equal(t, "ButyricimonasSynergistica", job.Source.Dataset.Name)
	assert.False(t, job.Source.Directed)

	require.NotNil(t, job.Walks)
	assert.Equal(t, 40, job.Walks.Length)
	assert.Equal(t, 10, job.Walks.Iterations)
	assert.Equal(t, 2.5, job.Walks.ChangeNodeType)
	assert.Equal(t, 0.5, job.Walks.Return)
	assert.Equal(t, 1.0, job.Walks.Explore, "unset weights stay neutral")
	assert.Equal(t, uint64(walks.DefaultRandomState), job.Walks.RandomState)
	assert.Equal(t, ModeComplete, job.Walks.Mode)

	require.NotNil(t, job.Holdout)
	assert.Equal(t, holdout.KindRandom, job.Holdout.Kind)
	assert.Equal(t, 0.7, job.Holdout.TrainSize)
	assert.Equal(t, uint64(7), job.Holdout.RandomState)
	metrics, err := job.Holdout.ParsedMetrics()
	require.NoError(t, err)
	assert.Equal(t, []algorithms.Metric{algorithms.MetricJaccard, algorithms.MetricAdamicAdar}, metrics)
}

func TestParse_Defaults(t *testing.T) {
	job, err := Parse(strings.NewReader(`
source:
  edge_list: {path: edges.tsv}
holdout:
  output: out
`))
	require.NoError(t, err)
	assert.Nil(t, job.Walks)
	assert.Equal(t, holdout.KindConnected, job.Holdout.Kind)
	assert.Equal(t, holdout.DefaultTrainSize, job.Holdout.TrainSize)
	assert.Equal(t, uint64(holdout.DefaultRandomState), job.Holdout.RandomState)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty",
			yaml: "",
			want: "empty",
		},
		{
			name: "unknown key",
			yaml: "source: {edge_list: {path: e}}\nwalk: {output: w}\n",
			want: "walk",
		},
		{
			name: "misspelt walk key",
			yaml: "source: {edge_list: {path: e}}\nwalks: {output: w, lenght: 5}\n",
			want: "lenght",
		},
		{
			name: "misspelt walk weight",
			yaml: "source: {edge_list: {path: e}}\nwalks:\n  output: w\n  chnage_node_type_weight: 3\n",
			want: "chnage_node_type_weight",
		},
		{
			name: "misspelt holdout key",
			yaml: "source: {edge_list: {path: e}}\nholdout: {output: o, trian_size: 0.5}\n",
			want: "trian_size",
		},
		{
			name: "two sources",
			yaml: "source: {edge_list: {path: e}, dataset: {repository: string, name: X}}\nholdout: {output: o}\n",
			want: "exactly one",
		},
		{
			name: "no source",
			yaml: "holdout: {output: o}\n",
			want: "exactly one",
		},
		{
			name: "no task",
			yaml: "source: {edge_list: {path: e}}\n",
			want: "neither walks nor holdout",
		},
		{
			name: "bad weight",
			yaml: "source: {edge_list: {path: e}}\nwalks: {output: w, explore_weight: 0}\n",
			want: "explore_weight",
		},
		{
			name: "random walks need a quantity",
			yaml: "source: {edge_list: {path: e}}\nwalks: {output: w, mode: random}\n",
			want: "walks.quantity",
		},
		{
			name: "node2vec on directed graph",
			yaml: "source: {edge_list: {path: e}, directed: true}\nwalks: {output: w, return_weight: 2}\n",
			want: "directed",
		},
		{
			name: "bad train size",
			yaml: "source: {edge_list: {path: e}}\nholdout: {output: o, train_size: 1.5}\n",
			want: "train size",
		},
		{
			name: "bad kind",
			yaml: "source: {edge_list: {path: e}}\nholdout: {output: o, kind: kfold}\n",
			want: "Kind",
		},
		{
			name: "bad metric",
			yaml: "source: {edge_list: {path: e}}\nholdout: {output: o, metrics: [katz]}\n",
			want: "katz",
		},
		{
			name: "header without column names",
			yaml: "source: {edge_list: {path: e, header: true}}\nholdout: {output: o}\n",
			want: "source.edge_list.sources",
		},
		{
			name: "bad dataset name",
			yaml: "source: {dataset: {repository: string, name: ../x}}\nholdout: {output: o}\n",
			want: "not a valid name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	_, err := Parse(strings.NewReader("walks: {output: w, length: -1}\nholdout: {output: o, train_size: 0}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, walks.ErrInvalidLength)
	assert.ErrorIs(t, err, holdout.ErrInvalidTrainSize)
	assert.Contains(t, err.Error(), "exactly one")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullJob), 0o644))

	job, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/graphs", job.CachePath)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
