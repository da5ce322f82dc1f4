package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// Authorization
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// Prediction-specific
	ErrUnknownExam       ErrCode = "UNKNOWN_EXAM"
	ErrAnswerKeyMissing  ErrCode = "ANSWER_KEY_MISSING"
	ErrPredictClosed     ErrCode = "PREDICT_CLOSED"
	ErrUnknownSubject    ErrCode = "UNKNOWN_SUBJECT"
	ErrAnswerCountLength ErrCode = "ANSWER_COUNT_LENGTH"
	ErrDuplicateSerial   ErrCode = "DUPLICATE_SERIAL"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// Authentication
	case ErrInvalidCredentials:
		return "수험번호 또는 비밀번호가 올바르지 않습니다."
	case ErrTokenRequired:
		return "인증 토큰이 필요합니다."
	case ErrTokenInvalid:
		return "유효하지 않은 인증 토큰입니다."
	case ErrTokenExpired:
		return "인증 토큰이 만료되었습니다."

	// Authorization
	case ErrForbidden:
		return "이 리소스에 접근할 권한이 없습니다."
	case ErrStudentAccessOnly:
		return "수험생 전용 리소스입니다."
	case ErrAdminAccessOnly:
		return "관리자 전용 리소스입니다."

	// Validation
	case ErrValidation:
		return "입력값을 확인해주세요."
	case ErrInvalidPayload:
		return "요청 형식이 올바르지 않습니다."

	// Resources
	case ErrNotFound:
		return "리소스를 찾을 수 없습니다."
	case ErrConflict:
		return "이미 존재하는 리소스입니다."

	// Prediction-specific
	case ErrUnknownExam:
		return "지원하지 않는 시험입니다."
	case ErrAnswerKeyMissing:
		return "정답을 업로드해주세요."
	case ErrPredictClosed:
		return "합격 예측이 마감되었습니다."
	case ErrUnknownSubject:
		return "지원하지 않는 과목입니다."
	case ErrAnswerCountLength:
		return "답안 개수가 문항 수와 일치하지 않습니다."
	case ErrDuplicateSerial:
		return "이미 등록된 수험번호입니다."

	// Server
	case ErrInternal:
		return "서버 오류가 발생했습니다."
	default:
		return "에러가 발생했습니다."
	}
}
