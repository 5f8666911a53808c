package parameter

import (
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/pdf"
)

// Encrypt protects Source with the standard security handler.
type Encrypt struct {
	OutputSettings
	Source        input.Source
	Algorithm     pdf.Encryption
	UserPassword  string
	OwnerPassword string
	Permissions   pdf.Permissions
}

func NewEncrypt(alg pdf.Encryption, ownerPassword string) *Encrypt {
	return &Encrypt{Algorithm: alg, OwnerPassword: ownerPassword, Permissions: pdf.AllPermissions()}
}

func (p *Encrypt) Sources() []input.Source { return []input.Source{p.Source} }

func (p *Encrypt) MinVersion() pdf.Version {
	return pdf.Max(p.minVersion(), p.Algorithm.MinVersion())
}

func (p *Encrypt) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if p.Algorithm < pdf.EncryptionRC4v40 || p.Algorithm > pdf.EncryptionAESv256 {
		return &ValidationError{Field: "algorithm", Reason: "unknown " + p.Algorithm.String()}
	}
	if p.OwnerPassword == "" {
		return &ValidationError{Field: "owner_password", Reason: "required"}
	}
	return p.OutputSettings.validate(p.MinVersion())
}

// Decrypt removes the protection of Source. The source password must open it.
type Decrypt struct {
	OutputSettings
	Source input.Source
}

func NewDecrypt() *Decrypt { return &Decrypt{} }

func (p *Decrypt) Sources() []input.Source { return []input.Source{p.Source} }
func (p *Decrypt) MinVersion() pdf.Version { return p.minVersion() }

func (p *Decrypt) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if p.Source.Password() == "" {
		return &ValidationError{Field: "source", Reason: "password required to decrypt"}
	}
	return p.OutputSettings.validate(p.MinVersion())
}
