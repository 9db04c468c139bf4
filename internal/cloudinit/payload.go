package cloudinit

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Header is the first line every cloud-config document must carry.
const Header = "#cloud-config"

// MaxUserDataSize is the largest user data Hetzner Cloud accepts.
const MaxUserDataSize = 32 * 1024

//go:embed assets/cloud-init.yaml.tmpl
var defaultTemplate string

//go:embed assets/install.sh
var installScript []byte

// Params holds the values substituted into the template.
type Params struct {
	RunnerDir         string
	RunnerVersion     string
	RunnerName        string
	RunnerLabels      []string
	RegistrationToken string
	RepositoryURL     string
	PreRunnerScript   string
}

// Template is a named cloud-config template.
type Template struct {
	Name string
	Text string
}

// DefaultTemplate returns the embedded template.
func DefaultTemplate() Template {
	return Template{Name: "cloud-init.yaml.tmpl", Text: defaultTemplate}
}

// LoadTemplate reads a template from path. An empty path selects the
// embedded default.
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, &TemplateError{Template: path, Err: err}
	}
	return Template{Name: path, Text: string(data)}, nil
}

// Payload is a rendered cloud-config document.
type Payload struct {
	UserData string
}

// Document is the subset of cloud-config the rendered payload is checked against.
//
// See https://cloudinit.readthedocs.io/en/latest/reference/modules.html
type Document struct {
	WriteFiles []WriteFile `yaml:"write_files,omitempty"`
	RunCmd     []any       `yaml:"runcmd,omitempty"`
}

// WriteFile is a single write_files entry.
type WriteFile struct {
	Path        string `yaml:"path"`
	Permissions string `yaml:"permissions,omitempty"`
	Encoding    string `yaml:"encoding,omitempty"`
	Content     string `yaml:"content"`
}

// Parse decodes the payload into a Document.
func (p *Payload) Parse() (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal([]byte(p.UserData), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// TemplateError reports a template that could not be loaded or rendered.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("cloud-init template %s: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// Build renders tmpl with params.
//
// Both scripts are embedded base64-encoded so that the template never has to
// quote shell code. Every variable referenced by the template must be known.
func Build(params Params, tmpl Template) (*Payload, error) {
	t, err := template.New(tmpl.Name).Option("missingkey=error").Parse(tmpl.Text)
	if err != nil {
		return nil, &TemplateError{Template: tmpl.Name, Err: err}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, params.values()); err != nil {
		return nil, &TemplateError{Template: tmpl.Name, Err: err}
	}

	payload := &Payload{UserData: buf.String()}
	if err := payload.validate(); err != nil {
		return nil, &TemplateError{Template: tmpl.Name, Err: err}
	}
	return payload, nil
}

func (p Params) values() map[string]string {
	return map[string]string{
		"runner_dir":         p.RunnerDir,
		"runner_version":     p.RunnerVersion,
		"runner_name":        p.RunnerName,
		"runner_labels":      strings.Join(p.RunnerLabels, ","),
		"registration_token": p.RegistrationToken,
		"repository_url":     p.RepositoryURL,
		"install_script":     base64.StdEncoding.EncodeToString(installScript),
		"pre_runner_script":  base64.StdEncoding.EncodeToString([]byte(p.PreRunnerScript)),
	}
}

func (p *Payload) validate() error {
	if !strings.HasPrefix(p.UserData, Header) {
		return errors.New("rendered document does not start with " + Header)
	}
	if len(p.UserData) > MaxUserDataSize {
		return fmt.Errorf("rendered document is %d bytes, limit is %d", len(p.UserData), MaxUserDataSize)
	}
	if _, err := p.Parse(); err != nil {
		return fmt.Errorf("rendered document is not valid YAML: %w", err)
	}
	return nil
}
