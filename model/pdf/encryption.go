package pdf

import (
	"fmt"
	"strings"
)

// Encryption names a standard security handler configuration.
type Encryption int

const (
	EncryptionRC4v40 Encryption = iota
	EncryptionRC4v128
	EncryptionAESv128
	EncryptionAESv256
)

var encryptionNames = []string{"rc4-40", "rc4-128", "aes-128", "aes-256"}

func (e Encryption) String() string {
	if e < 0 || int(e) >= len(encryptionNames) {
		return fmt.Sprintf("Encryption(%d)", int(e))
	}
	return encryptionNames[e]
}

func ParseEncryption(s string) (Encryption, error) {
	for i, name := range encryptionNames {
		if strings.EqualFold(name, s) {
			return Encryption(i), nil
		}
	}
	return 0, fmt.Errorf("unknown encryption %q", s)
}

// KeyLength is the key size in bits.
func (e Encryption) KeyLength() int {
	switch e {
	case EncryptionRC4v40:
		return 40
	case EncryptionAESv256:
		return 256
	}
	return 128
}

func (e Encryption) AES() bool { return e == EncryptionAESv128 || e == EncryptionAESv256 }

// MinVersion is the lowest header version able to carry the handler.
func (e Encryption) MinVersion() Version {
	switch e {
	case EncryptionRC4v128:
		return Version14
	case EncryptionAESv128:
		return Version16
	case EncryptionAESv256:
		return Version17
	}
	return Version11
}

// Permissions lists what a user opening the document with the user password may do.
type Permissions struct{ Print, Modify, Copy, ModifyAnnotations, FillForms, ExtractAccessible, Assemble, PrintHighQuality bool }

// AllPermissions grants everything.
func AllPermissions() Permissions {
	return Permissions{true, true, true, true, true, true, true, true}
}

// reservedPermissionBits are bits 7-8 and 13-16 of /P, which must be 1. The
// engine writes /P as a 16 bit value, so the sign extension sets bits 17-32.
const reservedPermissionBits = 0xF0C0

// Flags encodes p as the 16 bit /P value of the standard security handler:
// permission bits 3-6 and 9-12 plus the reserved bits.
func (p Permissions) Flags() int {
	flags := reservedPermissionBits
	set := func(on bool, bit uint) {
		if on {
			flags |= 1 << (bit - 1)
		}
	}
	set(p.Print, 3)
	set(p.Modify, 4)
	set(p.Copy, 5)
	set(p.ModifyAnnotations, 6)
	set(p.FillForms, 9)
	set(p.ExtractAccessible, 10)
	set(p.Assemble, 11)
	set(p.PrintHighQuality, 12)
	return flags
}

// ParsePermissions reads a comma separated list such as "print,copy" or "all"/"none".
func ParsePermissions(s string) (Permissions, error) {
	var p Permissions
	for _, f := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "", "none":
		case "all":
			p = AllPermissions()
		case "print":
			p.Print = true
		case "modify":
			p.Modify = true
		case "copy":
			p.Copy = true
		case "annotations":
			p.ModifyAnnotations = true
		case "fill":
			p.FillForms = true
		case "extract":
			p.ExtractAccessible = true
		case "assemble":
			p.Assemble = true
		case "print-hq":
			p.PrintHighQuality = true
		default:
			return Permissions{}, fmt.Errorf("unknown permission %q", f)
		}
	}
	return p, nil
}
