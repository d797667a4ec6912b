package entities

import (
	"os"
	"strings"
	"time"
)

// VarArgs holds the arguments parsed from a `VAR_<NAME>[;...]` file.
type VarArgs struct {
	Disabled  bool   `arg:"disabled"`
	Name      string `arg:"name"`
	Ref       string `arg:"ref"`
	Value     string `arg:"value"`
	File      string `arg:"file"`
	Slash     string `arg:"slash"`
	Semicolon string `arg:"semicolon"`
}

// Var is a file matching `VAR_<NAME>[;...]`.
type Var struct {
	Common
	VarName VarName
	Args    VarArgs

	// content caches what LoadContent read from disk (the VAR file's own
	// content or the pointed-to file's); `value=` takes precedence over it.
	content string
}

func (v *Var) Kind() Kind { return KindVar }

// NewVar builds a Var candidate. name must already have been validated
// against `[A-Z][A-Z0-9_]*[A-Z0-9]` by the grammar package.
func NewVar(path string, ctime time.Time, name VarName, attrs Attrs) (*Var, error) {
	var args VarArgs
	if err := decodeAttrs(attrs, &args); err != nil {
		return nil, NewValidationError("Var", "args", "", "could not decode arguments", err)
	}
	return &Var{
		Common: Common{
			EntityPath:  path,
			ChangeTime:  ctime,
			IsDisabled:  args.Disabled,
			DisplayName: args.Name,
			Attrs:       attrs,
			RefTarget:   args.Ref,
		},
		VarName: name,
		Args:    args,
	}, nil
}

// Value resolves the variable's exposed string value: `value=...` wins,
// else the content LoadContent read from disk, else empty. I/O failures
// are the caller's responsibility to log per §7.3 ("treat value as empty,
// keep the entity live"); Value itself never errors.
func (v *Var) Value() string {
	if v.Args.Value != "" {
		return v.Args.Value
	}
	if v.content != "" {
		return v.content
	}
	return ""
}

// LoadContent reads the variable's backing content: the file named by
// `file=`, the file whose path is the first line of the VAR file itself
// (`file=__inside__`), or, with no `file=`, the VAR file's own content.
// I/O errors are swallowed here; the caller logs a warning per §7.3.
func (v *Var) LoadContent() {
	path := v.Args.File
	switch path {
	case "":
		path = v.Path()
	case "__inside__":
		data, err := os.ReadFile(v.Path())
		if err != nil {
			v.content = ""
			return
		}
		line, _, _ := strings.Cut(string(data), "\n")
		path = strings.TrimSpace(line)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		v.content = ""
		return
	}
	v.content = string(data)
}
