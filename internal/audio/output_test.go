package audio

import (
	"errors"
	"testing"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

func TestResolveDeviceFormatNativeFormatsPassThrough(t *testing.T) {
	got, err := ResolveDeviceFormat(model.FormatF32)
	if err != nil || got != model.FormatF32 {
		t.Fatalf("f32: got %v, %v", got, err)
	}
}

func TestResolveDeviceFormatDowngradesToI16(t *testing.T) {
	for _, f := range []model.SampleFormat{model.FormatI16, model.FormatI32, model.FormatU16} {
		got, err := ResolveDeviceFormat(f)
		if err != nil {
			t.Fatalf("%v: unexpected error %v", f, err)
		}
		if got != model.FormatI16 {
			t.Fatalf("%v: expected downgrade to i16, got %v", f, got)
		}
	}
}

func TestResolveDeviceFormatRejectsUnsupported(t *testing.T) {
	_, err := ResolveDeviceFormat(model.SampleFormat(99))
	if err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
	var oerr *Error
	if !errors.As(err, &oerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if oerr.Kind != OpenStreamError {
		t.Fatalf("expected OpenStreamError, got %v", oerr.Kind)
	}
}
