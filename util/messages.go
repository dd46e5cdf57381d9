package util

const (
	SOMETHING_WENT_WRONG = "Something went wrong, please try again later"

	INVALID_REQUEST_BODY          = "Invalid request body"
	INVALID_ID                    = "Invalid id"
	AUTHORIZATION_HEADER_REQUIRED = "Authorization header required"
	INVALID_AUTHORIZATION_HEADER  = "Invalid authorization header format"
	INVALID_TOKEN                 = "Invalid or expired token"
	INVALID_CREDENTIALS           = "Invalid email or password"
	ACCOUNT_DISABLED              = "Account is disabled"
	ROLE_NOT_PERMITTED            = "You do not have permission to access this resource"
	PERMISSION_DENIED             = "Admin does not have the required permission"

	APPOINTMENT_NOT_FOUND          = "Appointment not found"
	APPOINTMENT_ACCESS_DENIED      = "You are not allowed to act on this appointment"
	APPOINTMENT_STATUS_CHANGED     = "Appointment status changed, reload and retry"
	SLOT_ALREADY_BOOKED            = "Time slot already booked"
	APPOINTMENT_DATE_IN_PAST       = "Appointment date cannot be in the past"
	APPOINTMENT_NOT_ELAPSED        = "Appointment cannot be completed before its scheduled time"
	REASON_REQUIRED                = "Reason for visit is required"
	INVALID_APPOINTMENT_TYPE       = "Invalid appointment type"
	INVALID_DURATION               = "Duration must be between 5 and 240 minutes"
	INVALID_STATUS                 = "Invalid appointment status"
	CANCELLATION_REASON_REQUIRED   = "Cancellation reason is required"
	CANCELLATION_REASON_TOO_SHORT  = "Cancellation reason must be at least 10 characters"
	PRESCRIPTION_ALREADY_EXISTS    = "Prescription already exists for this appointment"
	PRESCRIPTION_NEEDS_COMPLETION  = "Prescription can only be created for a completed appointment"
	PRESCRIPTION_NEEDS_MEDICATIONS = "At least one medication is required"
	DIAGNOSIS_REQUIRED             = "Diagnosis is required"

	DOCTOR_NOT_FOUND         = "Doctor not found"
	DOCTOR_NOT_BOOKABLE      = "Doctor is not available for booking"
	DOCTOR_ON_LEAVE          = "Doctor is on leave on the requested date"
	DOCTOR_NOT_AVAILABLE_DAY = "Doctor is not available on the requested day"
	OUTSIDE_AVAILABILITY     = "Requested time is outside the doctor's working hours"
	INVALID_WEEKDAY          = "Availability day must be a weekday name"
	INVALID_WINDOW           = "Availability window must end after it starts"
	INVALID_APPROVAL_STATUS  = "Approval status must be approved or rejected"
	DOCTOR_ALREADY_REVIEWED  = "Doctor has already been reviewed"
	PATIENT_NOT_FOUND        = "Patient not found"
	ADMIN_NOT_FOUND          = "Admin not found"
	USER_NOT_FOUND           = "User not found"
	DOCTOR_ALREADY_INACTIVE  = "Doctor is already deactivated"
	PATIENT_ALREADY_INACTIVE = "Patient is already deactivated"
	EMAIL_ALREADY_REGISTERED = "Email is already registered"
	INVALID_ROLE             = "Role must be patient or doctor"
	DEPARTMENT_REQUIRED      = "Department is required for doctors"

	LEAVE_NOT_FOUND            = "Leave request not found"
	LEAVE_ALREADY_PROCESSED    = "Leave request has already been processed"
	LEAVE_ACCESS_DENIED        = "You are not allowed to act on this leave request"
	LEAVE_STATUS_REQUIRED      = "Status must be approved or rejected"
	REJECTION_REASON_TOO_SHORT = "Rejection reason must be at least 10 characters"
	LEAVE_DATES_INVALID        = "End date cannot be before start date"
	LEAVE_TYPE_INVALID         = "Invalid leave type"
	LEAVE_REASON_REQUIRED      = "Leave reason is required"

	DEPARTMENT_NOT_FOUND       = "Department not found"
	DEPARTMENT_NAME_REQUIRED   = "Department name is required"
	DEPARTMENT_CODE_TAKEN      = "Department code already exists"
	DEPARTMENT_HAS_DOCTORS     = "Department cannot be deleted while doctors are assigned to it"
	AVAILABLE_EXCEEDS_TOTAL    = "Available beds cannot exceed total beds"
	OCCUPIED_EXCEEDS_TOTAL     = "Occupied beds cannot exceed total beds"
	BEDS_CANNOT_BE_NEGATIVE    = "Bed counts cannot be negative"
	BED_TOTAL_REQUIRED         = "Total beds is required"
	AVAILABLE_OR_OCCUPIED_ONLY = "Provide either available or occupied beds, not both"

	NOTIFICATION_NOT_FOUND = "Notification not found"
	INVALID_PERIOD         = "Period must be week, month or year"
	INVALID_DATE           = "Invalid date, expected YYYY-MM-DD"
	INVALID_TIME           = "Invalid time, expected HH:MM or h:mm AM/PM"
)

// Reasons recorded on appointments cancelled by the system.
const (
	DOCTOR_REMOVED_REASON  = "Doctor is no longer available at this hospital"
	PATIENT_REMOVED_REASON = "Patient account was deactivated"
	EXPIRED_REASON         = "Appointment request expired without confirmation"
)
