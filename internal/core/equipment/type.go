package equipment

import "fmt"

// Type は備品種別です。
type Type string

const (
	TypeLaptop   Type = "Laptop"
	TypeDesktop  Type = "Desktop"
	TypeMonitor  Type = "Monitor"
	TypeKeyboard Type = "Keyboard"
	TypeMouse    Type = "Mouse"
	TypeHeadset  Type = "Headset"
	TypePhone    Type = "Phone"
	TypeTablet   Type = "Tablet"
	TypeAdapter  Type = "Adapter"
	TypeCable    Type = "Cable"
	TypeDock     Type = "Dock"
	TypeWebcam   Type = "Webcam"
)

func ParseType(raw string) (Type, error) {
	switch t := Type(raw); t {
	case TypeLaptop, TypeDesktop, TypeMonitor, TypeKeyboard, TypeMouse, TypeHeadset,
		TypePhone, TypeTablet, TypeAdapter, TypeCable, TypeDock, TypeWebcam:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
	}
}

// IsPrimaryDevice は業務用の主端末か判定します。
func (t Type) IsPrimaryDevice() bool {
	switch t {
	case TypeLaptop, TypeDesktop, TypePhone, TypeTablet:
		return true
	}
	return false
}

// IsAccessory は周辺機器か判定します。Monitor と Dock はどちらにも属しません。
func (t Type) IsAccessory() bool {
	switch t {
	case TypeKeyboard, TypeMouse, TypeHeadset, TypeAdapter, TypeCable, TypeWebcam:
		return true
	}
	return false
}

// Status は備品の状態です。
type Status string

const (
	StatusAvailable      Status = "Available"
	StatusAssigned       Status = "Assigned"
	StatusInMaintenance  Status = "InMaintenance"
	StatusDecommissioned Status = "Decommissioned"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusAvailable, StatusAssigned, StatusInMaintenance, StatusDecommissioned:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// ConditionGood は返却後すぐに再貸出できる状態です。
const ConditionGood = "Good"
