package task

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDocument_ExpandsTodoList(t *testing.T) {
	req := require.New(t)

	// Given a section whose shared keys feed two todo items
	doc, err := ParseDocument([]byte(`extract:
  file_format: evtaf
  labelset: iab
  todo_list:
    - bird_ID: gy6or6
      data_dirs: [a]
      output_dir: out
    - bird_ID: or60yw70
      data_dirs: [b]
      output_dir: out
      labelset: ab
`))
	req.NoError(err)

	// Then every item carries the shared keys unless it sets them itself
	tasks := doc.Tasks(domain.PhaseExtract)
	req.Len(tasks, 2)
	req.Equal("evtaf", stringKey(tasks[0], "file_format"))
	req.Equal("evtaf", stringKey(tasks[1], "file_format"))
	req.Equal("iab", stringKey(tasks[0], "labelset"))
	req.Equal("ab", stringKey(tasks[1], "labelset"))
	req.NotContains(tasks[0].Keys(), keyTodoList)
}

func TestParseDocument_SectionWithoutTodoListIsOneTask(t *testing.T) {
	req := require.New(t)
	doc, err := ParseDocument([]byte("select:\n  feature_file: f.hvc\n  output_dir: out\n  models: []\n"))
	req.NoError(err)
	req.Len(doc.Tasks(domain.PhaseSelect), 1)
	req.Empty(doc.Tasks(domain.PhaseExtract))
}

func TestParseDocument_PhasesInPipelineOrder(t *testing.T) {
	doc, err := ParseDocument([]byte("predict:\n  model_file: m\nextract:\n  bird_ID: b\nselect:\n  models: []\n"))
	require.NoError(t, err)
	require.Equal(t, []domain.Phase{domain.PhaseExtract, domain.PhaseSelect, domain.PhasePredict}, doc.Phases())
}

func TestParseDocument_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"empty document", ""},
		{"unknown section", "train:\n  models: []\n"},
		{"section is not a mapping", "extract: [1, 2]\n"},
		{"todo_list is not a list", "extract:\n  todo_list: yes\n"},
		{"todo item is not a mapping", "extract:\n  todo_list: [gy6or6]\n"},
		{"malformed yaml", "extract: {bird_ID: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.yml))
			require.ErrorIs(t, err, errors.ErrTaskDocument)
		})
	}
}

func TestLoadDocument(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	req.NoError(os.WriteFile(path, []byte("predict:\n  model_file: m.hvcmodel\n"), 0o644))

	doc, err := LoadDocument(path)
	req.NoError(err)
	req.Equal(path, doc.Source())
	req.Len(doc.Tasks(domain.PhasePredict), 1)

	_, err = LoadDocument(filepath.Join(t.TempDir(), "missing.yml"))
	req.ErrorIs(err, errors.ErrTaskDocument)
}

func TestDescription_CloneIsIndependent(t *testing.T) {
	req := require.New(t)
	desc := Description{"bird_ID": domain.StringValue("gy6or6")}
	cp := desc.Clone()
	cp["bird_ID"] = domain.StringValue("other")
	req.Equal("gy6or6", stringKey(desc, "bird_ID"))
}
