// Package notify sends the templated emails tasks trigger: welcome
// messages, password resets, and the sysadmin alert a failed job raises.
// It reuses the teacher's markdown/frontmatter renderer unchanged and
// supplies two things the teacher didn't need: an SMTP sender (the
// facility's mail goes out over local SMTP, not a SaaS API) and recipient
// resolution against the control-plane store (member/society email
// addresses instead of a caller-supplied address).
package notify
