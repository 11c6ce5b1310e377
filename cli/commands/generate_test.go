package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erikhoward/graft/core"
	"github.com/erikhoward/graft/internal/config"
	"github.com/erikhoward/graft/internal/input"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake image body")

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func TestGenerateInlineImageAutoName(t *testing.T) {
	t.Chdir(t.TempDir())
	api := newFakeOpenRouter(t)
	api.reply = imagesReply(dataURL(pngBytes))

	res := runGraft(t, "", "-p", "A red fox, at dawn!", "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("run error = %v (stderr %q)", res.err, res.stderr)
	}

	name := "graft_20261017_093005_A_red_fox_at_dawn.png"
	if got := readFile(t, name); string(got) != string(pngBytes) {
		t.Errorf("%s = %q, want decoded payload", name, got)
	}
	if !strings.Contains(res.stdout, "Image 1 saved successfully: "+name) {
		t.Errorf("stdout = %q, want success line", res.stdout)
	}
	if !strings.Contains(res.stdout, "Generated 1 image(s)") {
		t.Errorf("stdout = %q, want summary", res.stdout)
	}

	body := api.lastChat(t)
	if body["model"] != string(config.Default().Model) {
		t.Errorf("model = %v, want default model", body["model"])
	}
	if body["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", body["temperature"])
	}
	msgs := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1 (no system prompt configured)", len(msgs))
	}
	parts := msgs[0].(map[string]any)["content"].([]any)
	if len(parts) != 1 || parts[0].(map[string]any)["text"] != "A red fox, at dawn!" {
		t.Errorf("content parts = %v, want single text part", parts)
	}
}

func TestGenerateMultipleImagesCustomName(t *testing.T) {
	dir := t.TempDir()
	api := newFakeOpenRouter(t)
	api.images["/remote/3.png"] = []byte("third")
	api.reply = imagesReply(dataURL([]byte("first")), dataURL([]byte("second")), api.URL+"/remote/3.png")

	res := runGraft(t, "", "-p", "three cats", "-o", filepath.Join(dir, "out.png"), "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("run error = %v (stderr %q)", res.err, res.stderr)
	}

	want := map[string]string{"out.png": "first", "out_2.png": "second", "out_3.png": "third"}
	for name, content := range want {
		if got := readFile(t, filepath.Join(dir, name)); string(got) != content {
			t.Errorf("%s = %q, want %q", name, got, content)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != len(want) {
		t.Errorf("files = %d, want %d", len(entries), len(want))
	}
	if !strings.Contains(res.stdout, "Generated 3 image(s)") {
		t.Errorf("stdout = %q, want summary", res.stdout)
	}
}

func TestGenerateStdoutWritesFirstImageOnly(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	api := newFakeOpenRouter(t)
	api.reply = imagesReply(dataURL(pngBytes), dataURL([]byte("second")))

	res := runGraft(t, "", "-p", "vintage car", "-o", "-", "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	if res.stdout != string(pngBytes) {
		t.Errorf("stdout = %q, want only the first image bytes", res.stdout)
	}
	if !strings.Contains(res.stderr, "Generating with") {
		t.Errorf("stderr = %q, want status lines", res.stderr)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files = %d, want none", len(entries))
	}
}

func TestGenerateContentURL(t *testing.T) {
	dir := t.TempDir()
	api := newFakeOpenRouter(t)
	api.images["/img/cat.png"] = []byte("cat bytes")
	api.reply = contentReply("Here is your image: " + api.URL + "/img/cat.png. Enjoy!")

	out := filepath.Join(dir, "cat.png")
	res := runGraft(t, "", "-p", "a cat", "-o", out, "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("run error = %v (stderr %q)", res.err, res.stderr)
	}
	if got := readFile(t, out); string(got) != "cat bytes" {
		t.Errorf("downloaded = %q", got)
	}
	if !strings.Contains(res.stdout, "Image URL: "+api.URL+"/img/cat.png") {
		t.Errorf("stdout = %q, want image URL", res.stdout)
	}
}

func TestGenerateContentURLDownloadFails(t *testing.T) {
	dir := t.TempDir()
	api := newFakeOpenRouter(t)
	api.reply = contentReply(api.URL + "/missing.png")

	res := runGraft(t, "", "-p", "a cat", "-o", filepath.Join(dir, "cat.png"), "--config", configFor(t, api))
	if res.err == nil {
		t.Fatal("expected error when the image cannot be downloaded")
	}
	if _, err := os.Stat(filepath.Join(dir, "cat.png")); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestGenerateTextOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	api := newFakeOpenRouter(t)
	api.reply = contentReply("I can only describe it: a calm lake.")

	res := runGraft(t, "", "-p", "a lake", "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("text-only completion should succeed, got %v", res.err)
	}
	if !strings.Contains(res.stdout, "Generated content:\nI can only describe it: a calm lake.") {
		t.Errorf("stdout = %q, want the text", res.stdout)
	}
}

func TestGenerateMalformed(t *testing.T) {
	api := newFakeOpenRouter(t)
	api.reply = `{"id":"x","choices":[]}`

	res := runGraft(t, "", "-p", "anything", "--config", configFor(t, api))
	if !errors.Is(res.err, core.ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", res.err)
	}
	if !strings.Contains(res.stderr, "Error: unexpected API response format") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestGenerateAPIError(t *testing.T) {
	api := newFakeOpenRouter(t)
	api.status = 401
	api.reply = `{"error":{"code":401,"message":"No auth credentials found"}}`

	res := runGraft(t, "", "-p", "anything", "--config", configFor(t, api))
	if !errors.Is(res.err, core.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", res.err)
	}
	if api.chatCount() != 1 {
		t.Errorf("requests = %d, want exactly 1 (no retry)", api.chatCount())
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	api := newFakeOpenRouter(t)
	cfg := writeConfig(t, "[openrouter]\nmodel = x\nbase_url = "+api.URL+"\n")

	res := runGraft(t, "", "-p", "anything", "--config", cfg)
	if !errors.Is(res.err, config.ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", res.err)
	}
	if api.chatCount() != 0 {
		t.Errorf("requests = %d, want none", api.chatCount())
	}
}

func TestGenerateMissingConfig(t *testing.T) {
	res := runGraft(t, "", "-p", "anything", "--config", filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(res.err, config.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", res.err)
	}
}

func TestGenerateTemperatureBounds(t *testing.T) {
	for _, tc := range []struct {
		value string
		want  float64
	}{{"0.0", 0}, {"1.0", 1}} {
		t.Run("accept "+tc.value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			api := newFakeOpenRouter(t)
			api.reply = imagesReply(dataURL(pngBytes))

			res := runGraft(t, "", "-p", "x", "-t", tc.value, "--config", configFor(t, api))
			if res.err != nil {
				t.Fatalf("run error = %v", res.err)
			}
			if got := api.lastChat(t)["temperature"]; got != tc.want {
				t.Errorf("temperature = %v, want %v", got, tc.want)
			}
		})
	}

	for _, value := range []string{"-0.01", "1.01", "NaN"} {
		t.Run("reject "+value, func(t *testing.T) {
			api := newFakeOpenRouter(t)
			res := runGraft(t, "", "-p", "x", "-t", value, "--config", configFor(t, api))
			if !errors.Is(res.err, config.ErrInvalidTemperature) {
				t.Fatalf("error = %v, want ErrInvalidTemperature", res.err)
			}
			if api.chatCount() != 0 {
				t.Errorf("requests = %d, want none", api.chatCount())
			}

			// Checked before the config is read.
			res = runGraft(t, "", "-p", "x", "-t", value, "--config", filepath.Join(t.TempDir(), "absent"))
			if !errors.Is(res.err, config.ErrInvalidTemperature) {
				t.Errorf("error without config = %v, want ErrInvalidTemperature", res.err)
			}
		})
	}
}

func TestGenerateOverridesAndSystemPrompt(t *testing.T) {
	t.Chdir(t.TempDir())
	api := newFakeOpenRouter(t)
	api.reply = imagesReply(dataURL(pngBytes))
	cfg := writeConfig(t, "[openrouter]\napi_key = k\nbase_url = "+api.URL+"\nmodel = cfg/model\ntemperature = 0.3\nsystem_prompt = Be bold.\n")

	res := runGraft(t, "", "-p", "x", "-m", "flag/model", "--config", cfg)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	body := api.lastChat(t)
	if body["model"] != "flag/model" {
		t.Errorf("model = %v, want flag/model", body["model"])
	}
	if body["temperature"] != 0.3 {
		t.Errorf("temperature = %v, want config value 0.3", body["temperature"])
	}
	msgs := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want system + user", len(msgs))
	}
	system := msgs[0].(map[string]any)
	if system["role"] != "system" || system["content"] != "Be bold." {
		t.Errorf("system message = %v", system)
	}
}

func TestGeneratePromptFromStdin(t *testing.T) {
	t.Chdir(t.TempDir())
	api := newFakeOpenRouter(t)
	api.reply = imagesReply(dataURL(pngBytes))

	res := runGraft(t, "  A futuristic city \n", "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	parts := api.lastChat(t)["messages"].([]any)[0].(map[string]any)["content"].([]any)
	if parts[0].(map[string]any)["text"] != "A futuristic city" {
		t.Errorf("prompt part = %v", parts[0])
	}
	if _, err := os.Stat("graft_20261017_093005_A_futuristic_city.png"); err != nil {
		t.Errorf("auto-named file missing: %v", err)
	}
}

func TestGenerateImageFromStdin(t *testing.T) {
	t.Chdir(t.TempDir())
	api := newFakeOpenRouter(t)
	api.reply = imagesReply(dataURL(pngBytes))

	res := runGraft(t, string(pngBytes), "-p", "make it green", "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	parts := api.lastChat(t)["messages"].([]any)[0].(map[string]any)["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("content parts = %d, want text + image", len(parts))
	}
	img := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	if img != dataURL(pngBytes) {
		t.Errorf("image part = %q, want png data URL", img)
	}
}

func TestGenerateImageFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	api := newFakeOpenRouter(t)
	api.reply = imagesReply(dataURL(pngBytes))

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := os.WriteFile("bottle.jpg", jpeg, 0644); err != nil {
		t.Fatal(err)
	}
	res := runGraft(t, "", "-p", "make the bottle green", "-i", "bottle.jpg", "--config", configFor(t, api))
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	parts := api.lastChat(t)["messages"].([]any)[0].(map[string]any)["content"].([]any)
	img := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(img, "data:image/jpeg;base64,") {
		t.Errorf("image part = %q, want jpeg data URL", img)
	}
}

func TestGenerateInputErrorsBeforeRequest(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(txt, []byte("hi"), 0644)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no prompt", nil, input.ErrNoPrompt},
		{"missing image", []string{"-p", "x", "-i", filepath.Join(dir, "nope.png")}, input.ErrImageNotFound},
		{"not an image", []string{"-p", "x", "-i", txt}, input.ErrNotAnImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeOpenRouter(t)
			args := append(tt.args, "--config", configFor(t, api))
			res := runGraft(t, "", args...)
			if !errors.Is(res.err, tt.want) {
				t.Fatalf("error = %v, want %v", res.err, tt.want)
			}
			if api.chatCount() != 0 {
				t.Errorf("requests = %d, want none", api.chatCount())
			}
		})
	}
}
