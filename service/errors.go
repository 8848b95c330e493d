package service

// RuleError 业务规则校验失败，对应 HTTP 400，Message 直接返回给客户端
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

var (
	ErrInvalidBuilding    = &RuleError{Message: "Invalid building type"}
	ErrInvalidIndex       = &RuleError{Message: "Invalid index"}
	ErrSlotOccupied       = &RuleError{Message: "Field already occupied"}
	ErrNotEnoughResources = &RuleError{Message: "Not enough resources"}
	ErrNoEmptySlots       = &RuleError{Message: "No empty slots available"}
)
