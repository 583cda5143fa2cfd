package constants

// Session and context keys
const (
	SessionCookieName = "task_session"
	ContextKeyUserID  = "user_id"
	ContextKeyRequest = "request_id"
	HeaderRequestID   = "X-Request-ID"
)

// Validation limits
const (
	MaxNameLength = 255
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxSuggestedTasks caps how many tasks a single suggestion request may return.
const MaxSuggestedTasks = 20

// User-facing messages
const (
	MsgRequiredField = "This field is required."
	MsgBlankField    = "This field cannot be blank."
	MsgInvalidField  = "Invalid value."

	MsgNameRequired     = "Name cannot be blank."
	MsgEmailRequired    = "Email address is required."
	MsgEmailInvalid     = "Email address is invalid."
	MsgEmailExists      = "Email already exists!"
	MsgPasswordRequired = "Password is required."
	MsgPasswordBlank    = "Password cannot be blank."
	MsgMaxLength        = "Ensure this field has no more characters than allowed."

	MsgServerNotAbleToProcess = "Not able to process your request at this moment.please try after some time"
	MsgSomethingWentWrong     = "Oops! Something went wrong."
	MsgInvalidCredentials     = "Invalid email or password"
	MsgNotAuthenticated       = "Authentication credentials were not provided."

	MsgUserIDRequired    = "User ID is required to fetch a specific user task details"
	MsgUserNotFound      = "User not found"
	MsgTaskNotFound      = "Task not found"
	MsgInvalidUserID     = "Invalid user ID"
	MsgInvalidTaskID     = "Invalid task ID"
	MsgInvalidStatus     = "Invalid status"
	MsgInvalidPriority   = "Priority must be one of 1 (Low), 2 (Medium), 3 (High)"
	MsgInvalidPK         = `Invalid pk "%d" - object does not exist.`
	MsgAlreadyAssigned   = "User %d is already assigned to this task"
	MsgDuplicateAssignee = "User %d is listed more than once"
	MsgPrimaryNotInBatch = "Primary user must be one of the assigned users"
	MsgInvalidTransition = "Status transition is not allowed"
	MsgAssignmentMissing = "User is not assigned to this task"
	MsgNoSuggestions     = "No tasks could be suggested from the text."
	MsgSuggestDisabled   = "Task suggestions are not configured. Please set OPENAI_API_KEY environment variable."
)
