package format

import "fmt"

// FlagWord is the general purpose bit flag of a file header.
type FlagWord uint16

// Flag bits this package recognizes. Remaining bits describe per-method
// compression options and carry no meaning for decoding.
const (
	FlagEncrypted         FlagWord = 1 << 0
	FlagDataDescriptor    FlagWord = 1 << 3
	FlagPatchedData       FlagWord = 1 << 5
	FlagStrongEncryption  FlagWord = 1 << 6
	FlagUTF8              FlagWord = 1 << 11
	FlagMaskedLocalHeader FlagWord = 1 << 13
)

// Encrypted reports whether the entry payload is encrypted.
func (f FlagWord) Encrypted() bool { return f&FlagEncrypted != 0 }

// HasDataDescriptor reports whether sizes and checksum follow the payload
// in a trailing data descriptor instead of the local header.
func (f FlagWord) HasDataDescriptor() bool { return f&FlagDataDescriptor != 0 }

// PatchedData reports whether the entry holds compressed patch data.
func (f FlagWord) PatchedData() bool { return f&FlagPatchedData != 0 }

// StrongEncrypted reports whether strong encryption is in use.
func (f FlagWord) StrongEncrypted() bool { return f&FlagStrongEncryption != 0 }

// UTF8 reports whether the name and comment are declared to be UTF-8.
func (f FlagWord) UTF8() bool { return f&FlagUTF8 != 0 }

// MaskedLocalHeader reports whether local header fields are masked out
// for central directory encryption.
func (f FlagWord) MaskedLocalHeader() bool { return f&FlagMaskedLocalHeader != 0 }

// rejectUnsupported returns an error for any set flag bit that changes
// how the payload must be read. The UTF-8 declaration is informational
// and passes through.
func (f FlagWord) rejectUnsupported() error {
	switch {
	case f.Encrypted():
		return fmt.Errorf("%w: encrypted entry", ErrUnsupported)
	case f.HasDataDescriptor():
		return fmt.Errorf("%w: data descriptor", ErrUnsupported)
	case f.PatchedData():
		return fmt.Errorf("%w: patched data", ErrUnsupported)
	case f.StrongEncrypted():
		return fmt.Errorf("%w: strong encryption", ErrUnsupported)
	case f.MaskedLocalHeader():
		return fmt.Errorf("%w: masked local header", ErrUnsupported)
	}
	return nil
}
