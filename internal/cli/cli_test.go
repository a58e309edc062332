package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sensorframe/internal/monitoring"
	"github.com/banshee-data/sensorframe/internal/testutil"
)

const testConfig = `sensor_id: wx-1
external_int_count: 4
external_float_count: 2
`

const testReadings = `frames:
  - ints:
      - {slot: 0, value: 17}
      - {slot: 2, value: -5}
    floats:
      - {slot: 1, value: 3.5}
    payload: hi
  - ints:
      - {slot: 0, value: 3}
`

// exampleHex is the encoding of the first frame in testReadings.
const exampleHex = "080410021a01252204220009002a1000000000000000000000000000000c4032026869"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fixtures(t *testing.T) (configPath, readingsPath string) {
	t.Helper()
	dir := t.TempDir()
	return writeFile(t, dir, "slots.yaml", testConfig), writeFile(t, dir, "readings.yaml", testReadings)
}

func TestEncode_Text(t *testing.T) {
	cfg, readings := fixtures(t)

	out, err := execute(t, "encode", "--config", cfg, "--readings", readings)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, exampleHex, lines[0])
}

func TestEncode_JSONWithStore(t *testing.T) {
	cfg, readings := fixtures(t)
	dbPath := testutil.TempDBPath(t)

	out, err := execute(t, "--format", "json", "encode", "-c", cfg, "-r", readings, "--db", dbPath, "--workers", "1")
	require.NoError(t, err)

	var frames []EncodedFrame
	require.NoError(t, json.Unmarshal([]byte(out), &frames))
	require.Len(t, frames, 2)
	assert.Equal(t, 3, frames[0].Present)
	assert.Equal(t, 35, frames[0].Size)
	assert.Equal(t, 1, frames[1].Present)
	assert.NotEmpty(t, frames[0].ID)

	listed, err := execute(t, "--format", "json", "list", "--db", dbPath, "--sensor", "wx-1")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(listed), &records))
	assert.Len(t, records, 2)
}

func TestEncode_ReadingOutOfRange(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "slots.yaml", testConfig)
	readings := writeFile(t, dir, "readings.yaml", "frames:\n  - ints:\n      - {slot: 4, value: 1}\n")

	_, err := execute(t, "encode", "-c", cfg, "-r", readings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 0")
}

func TestEncode_RequiresReadings(t *testing.T) {
	_, err := execute(t, "encode")
	assert.Error(t, err)
}

func TestList_EmptyStoreText(t *testing.T) {
	out, err := execute(t, "list", "--db", testutil.TempDBPath(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ID"), "got %q", out)
}

func TestList_EmptyStoreJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "list", "--db", testutil.TempDBPath(t))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestReport_TextAndChart(t *testing.T) {
	cfg, readings := fixtures(t)
	chart := filepath.Join(t.TempDir(), "occupancy.html")

	out, err := execute(t, "report", "-c", cfg, "-r", readings, "-o", chart)
	require.NoError(t, err)
	assert.Contains(t, out, "frames=2 int_slots=4 float_slots=2")
	assert.Contains(t, out, "i0")

	html, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Slot occupancy: wx-1")
}

func TestReport_ChartIntoDirectory(t *testing.T) {
	cfg, readings := fixtures(t)
	dir := t.TempDir()

	_, err := execute(t, "--format", "json", "report", "-c", cfg, "-r", readings, "-o", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "wx-1-occupancy.html"))
}

func TestReport_RejectsOutsidePath(t *testing.T) {
	cfg, readings := fixtures(t)

	_, err := execute(t, "report", "-c", cfg, "-r", readings, "-o", "/proc/self/chart.html")
	assert.Error(t, err)
}

func TestMigrate_Version(t *testing.T) {
	dbPath := testutil.TempDBPath(t)

	out, err := execute(t, "migrate", "--db", dbPath, "version")
	require.NoError(t, err)
	assert.Equal(t, "version=0 latest=2 dirty=false\n", out)

	out, err = execute(t, "migrate", "--db", dbPath, "up")
	require.NoError(t, err)
	assert.Equal(t, "version=2 latest=2 dirty=false\n", out)

	out, err = execute(t, "--format", "json", "migrate", "--db", dbPath, "down")
	require.NoError(t, err)
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.EqualValues(t, 1, v["current_version"])
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVersion_Text(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sensorframe "), "got %q", out)
}
