// Package jobs holds the job-kind registry: the fixed type tags a Job
// record's Type column carries, each kind's argument names and approval
// policy, the sensitive-argument table used by the entity-deletion scrub,
// and the JobAction state-machine wrapper around store.SetJobState.
//
// The jobs themselves are executed by internal/tasks; this package only
// describes their shape.
package jobs

// Kind is a job's fixed type tag, stored verbatim in jobs.type.
type Kind string

const (
	KindTest Kind = "test"

	KindSignup            Kind = "signup"
	KindReactivate        Kind = "reactivate"
	KindResetUserPassword Kind = "reset_user_password"
	KindUpdateName        Kind = "update_name"
	KindUpdateEmail       Kind = "update_email_address"
	KindUpdateMailHandler Kind = "update_mail_handler"

	KindCreateUserMailingList           Kind = "create_user_mailing_list"
	KindResetUserMailingListPassword    Kind = "reset_user_mailing_list_password"
	KindCreateSocietyMailingList        Kind = "create_society_mailing_list"
	KindResetSocietyMailingListPassword Kind = "reset_society_mailing_list_password"

	KindAddUserVhost            Kind = "add_user_vhost"
	KindChangeUserVhostDocroot  Kind = "change_user_vhost_docroot"
	KindRemoveUserVhost         Kind = "remove_user_vhost"
	KindAddSocietyVhost         Kind = "add_society_vhost"
	KindChangeSocietyVhostRoot  Kind = "change_society_vhost_docroot"
	KindRemoveSocietyVhost      Kind = "remove_society_vhost"

	KindCreateSociety            Kind = "create_society"
	KindUpdateSocietyDescription Kind = "update_society_description"
	KindUpdateSocietyRoleEmail   Kind = "update_society_role_email"
	KindChangeSocietyAdmin       Kind = "change_society_admin"

	KindCreateMySQLUserDatabase    Kind = "create_mysql_user_database"
	KindResetMySQLUserPassword     Kind = "reset_mysql_user_password"
	KindCreateMySQLSocietyDatabase Kind = "create_mysql_society_database"
	KindResetMySQLSocietyPassword  Kind = "reset_mysql_society_password"

	KindCreatePostgresUserDatabase    Kind = "create_postgres_user_database"
	KindResetPostgresUserPassword     Kind = "reset_postgres_user_password"
	KindCreatePostgresSocietyDatabase Kind = "create_postgres_society_database"
	KindResetPostgresSocietyPassword  Kind = "reset_postgres_society_password"

	KindCancelMember Kind = "cancel_member"
	KindDeleteMember Kind = "delete_member"

	KindDeleteSociety Kind = "delete_society"
)

// ArgNames lists the ordered string keys each kind reads out of a Job's
// args map. It's descriptive only — decoding is done per kind by the
// typed Decode* helpers in args.go.
var ArgNames = map[Kind][]string{
	KindTest:                            {"sleep_time"},
	KindSignup:                          {"crsid", "preferred_name", "surname", "email", "mail_handler", "social"},
	KindReactivate:                      {"email"},
	KindResetUserPassword:               {},
	KindUpdateName:                      {"preferred_name", "surname"},
	KindUpdateEmail:                     {"email"},
	KindUpdateMailHandler:               {"mail_handler"},
	KindCreateUserMailingList:           {"listname"},
	KindResetUserMailingListPassword:    {"listname"},
	KindCreateSocietyMailingList:        {"society", "listname"},
	KindResetSocietyMailingListPassword: {"society", "listname"},
	KindAddUserVhost:                    {"domain", "root"},
	KindChangeUserVhostDocroot:          {"domain", "root"},
	KindRemoveUserVhost:                 {"domain"},
	KindAddSocietyVhost:                 {"society", "domain", "root"},
	KindChangeSocietyVhostRoot:          {"society", "domain", "root"},
	KindRemoveSocietyVhost:              {"society", "domain"},
	KindCreateSociety:                   {"society", "description", "admins"},
	KindUpdateSocietyDescription:        {"society", "description"},
	KindUpdateSocietyRoleEmail:          {"society", "email"},
	KindChangeSocietyAdmin:              {"society", "target_member", "action"},
	KindCreateMySQLUserDatabase:         {},
	KindResetMySQLUserPassword:          {},
	KindCreateMySQLSocietyDatabase:      {"society"},
	KindResetMySQLSocietyPassword:       {"society"},
	KindCreatePostgresUserDatabase:      {},
	KindResetPostgresUserPassword:       {},
	KindCreatePostgresSocietyDatabase:   {"society"},
	KindResetPostgresSocietyPassword:    {"society"},
	KindCancelMember:                    {"keep_groups"},
	KindDeleteMember:                    {},
	KindDeleteSociety:                   {},
}

// SensitiveArgs lists, per kind, the argument names that carry personal
// data and must be overwritten with a redaction marker when the owning
// member or society is deleted.
var SensitiveArgs = map[Kind][]string{
	KindSignup:                          {"preferred_name", "surname", "email"},
	KindReactivate:                      {"preferred_name", "surname", "email"},
	KindUpdateName:                      {"preferred_name", "surname"},
	KindUpdateEmail:                     {"email"},
	KindCreateUserMailingList:           {"listname"},
	KindResetUserMailingListPassword:    {"listname"},
	KindAddUserVhost:                    {"domain", "root"},
	KindChangeUserVhostDocroot:          {"domain", "root"},
	KindRemoveUserVhost:                 {"domain"},
	KindCreateSociety:                   {"description"},
	KindUpdateSocietyDescription:        {"description"},
	KindUpdateSocietyRoleEmail:          {"email"},
	KindCreateSocietyMailingList:        {"listname"},
	KindResetSocietyMailingListPassword: {"listname"},
	KindAddSocietyVhost:                 {"domain", "root"},
	KindChangeSocietyVhostRoot:          {"domain", "root"},
	KindRemoveSocietyVhost:              {"domain"},
}

// RedactionMarker replaces a scrubbed sensitive argument's value.
const RedactionMarker = "<redacted>"

// Scrub returns a copy of args with every name in SensitiveArgs[kind]
// overwritten with RedactionMarker, leaving non-sensitive keys untouched.
// Used by the member/society deletion task to purge personal data from
// historical job records without losing their shape.
func Scrub(kind Kind, args map[string]string) map[string]string {
	sensitive := SensitiveArgs[kind]
	if len(sensitive) == 0 {
		return args
	}
	out := make(map[string]string, len(args))
	for k, v := range args {
		out[k] = v
	}
	for _, name := range sensitive {
		if _, ok := out[name]; ok {
			out[name] = RedactionMarker
		}
	}
	return out
}
