package class

import (
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/kmr-srbh/paper-desktop/core"
)

// Profile is the class record: the access PIN and, once created, the class name.
type Profile struct {
	PINHash []byte      `json:"-"`
	Name    null.String `json:"name"`
}

func (p Profile) HasClass() bool {
	return p.Name.Valid && p.Name.String != ""
}

func (p *Profile) SetPIN(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PINHash = hash
	return nil
}

func (p Profile) CheckPIN(pin string) error {
	if err := bcrypt.CompareHashAndPassword(p.PINHash, []byte(pin)); err != nil {
		return ErrWrongPIN
	}
	return nil
}

type NewPIN struct {
	PIN string `json:"pin" validate:"pin"`
}

func (np *NewPIN) Validate() error {
	np.PIN = core.CleanString(np.PIN)
	return core.Validate.Struct(np)
}

type ChangePIN struct {
	OldPIN string `json:"old_pin" validate:"required"`
	NewPIN string `json:"new_pin" validate:"pin"`
}

func (cp *ChangePIN) Validate() error {
	cp.OldPIN = core.CleanString(cp.OldPIN)
	cp.NewPIN = core.CleanString(cp.NewPIN)
	if err := core.Validate.Struct(cp); err != nil {
		return err
	}
	if cp.OldPIN == cp.NewPIN {
		return core.NewValidationError(ErrSamePIN, core.FieldError{Field: "new_pin", Error: ErrSamePIN.Error()})
	}
	return nil
}

type ClassName struct {
	Name string `json:"name" validate:"notblank,max=20"`
}

func (cn *ClassName) Validate() error {
	cn.Name = core.CleanString(cn.Name)
	return core.Validate.Struct(cn)
}
