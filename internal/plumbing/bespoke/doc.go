// Package bespoke wraps the facility-specific plumbing that has no
// general-purpose equivalent: home-directory society symlinks, the Exim
// mail ACL and .forward file, disk quotas, the legacy web-status and
// membership-export scripts, and Mailman's post-creation configuration
// step.
package bespoke
