package contact

// ContactRequest is the payload accepted by POST /contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject,omitempty" validate:"omitempty,max=256"`
	Message string `json:"message" validate:"required,max=4096"`
}
