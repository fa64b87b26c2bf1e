// Package i18n resolves user-facing strings produced by the reducer.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Locale string

const (
	English Locale = "en"
	Spanish Locale = "es"
)

type Key string

const (
	ErrNotPermitted       Key = "err.not_permitted"
	ErrTitleRequired      Key = "err.title_required"
	ErrNameRequired       Key = "err.name_required"
	ErrStateRequired      Key = "err.state_required"
	ErrTypeRequired       Key = "err.type_required"
	ErrSelectUser         Key = "err.select_user"
	ErrSelectProject      Key = "err.select_project"
	ErrSelectTemplate     Key = "err.select_template"
	ErrSelectRule         Key = "err.select_rule"
	ErrSelectWorkflow     Key = "err.select_workflow"
	ErrEmailInvalid       Key = "err.email_invalid"
	ErrNoProject          Key = "err.no_project"
	ErrCardHasTasks       Key = "err.card_has_tasks"
	ErrLastManager        Key = "err.last_manager"
	ErrLastAdmin          Key = "err.last_admin"
	ErrAlreadyMember      Key = "err.already_member"
	ErrRoleConflict       Key = "err.role_conflict"
	ErrClipboard          Key = "err.clipboard"
	ErrSessionExpired     Key = "err.session_expired"
	ToastProjectCreated   Key = "toast.project_created"
	ToastMemberAdded      Key = "toast.member_added"
	ToastMemberRemoved    Key = "toast.member_removed"
	ToastRoleUpdated      Key = "toast.role_updated"
	ToastCardCreated      Key = "toast.card_created"
	ToastCardUpdated      Key = "toast.card_updated"
	ToastCardDeleted      Key = "toast.card_deleted"
	ToastWorkflowCreated  Key = "toast.workflow_created"
	ToastWorkflowUpdated  Key = "toast.workflow_updated"
	ToastWorkflowDeleted  Key = "toast.workflow_deleted"
	ToastRuleCreated      Key = "toast.rule_created"
	ToastRuleUpdated      Key = "toast.rule_updated"
	ToastRuleDeleted      Key = "toast.rule_deleted"
	ToastTemplateAttached Key = "toast.template_attached"
	ToastTemplateDetached Key = "toast.template_detached"
	ToastTemplateCreated  Key = "toast.template_created"
	ToastTemplateUpdated  Key = "toast.template_updated"
	ToastTemplateDeleted  Key = "toast.template_deleted"
	ToastInviteCreated    Key = "toast.invite_created"
	ToastInviteRegen      Key = "toast.invite_regenerated"
	ToastLinkCopied       Key = "toast.link_copied"
	ToastUserAddedProject Key = "toast.user_added_project"
	ToastUserRemovedProj  Key = "toast.user_removed_project"
)

var tables = map[Locale]map[Key]string{
	English: {
		ErrNotPermitted:       "You are not permitted to do that",
		ErrTitleRequired:      "Title is required",
		ErrNameRequired:       "Name is required",
		ErrStateRequired:      "Target state is required",
		ErrTypeRequired:       "Task type is required",
		ErrSelectUser:         "Select a user first",
		ErrSelectProject:      "Select a project first",
		ErrSelectTemplate:     "Select a template first",
		ErrSelectRule:         "Select a rule first",
		ErrSelectWorkflow:     "Select a workflow first",
		ErrEmailInvalid:       "Enter a valid email address",
		ErrNoProject:          "No project selected",
		ErrCardHasTasks:       "This card still has tasks; remove them before deleting it",
		ErrLastManager:        "Cannot demote the last manager of the project",
		ErrLastAdmin:          "Cannot demote the last admin of the organization",
		ErrAlreadyMember:      "User is already a member",
		ErrRoleConflict:       "Role was changed by someone else",
		ErrClipboard:          "Could not copy to clipboard: %s",
		ErrSessionExpired:     "Your session has expired",
		ToastProjectCreated:   "Project created",
		ToastMemberAdded:      "Member added",
		ToastMemberRemoved:    "Member removed",
		ToastRoleUpdated:      "Role updated",
		ToastCardCreated:      "Card created",
		ToastCardUpdated:      "Card updated",
		ToastCardDeleted:      "Card deleted",
		ToastWorkflowCreated:  "Workflow created",
		ToastWorkflowUpdated:  "Workflow updated",
		ToastWorkflowDeleted:  "Workflow deleted",
		ToastRuleCreated:      "Rule created",
		ToastRuleUpdated:      "Rule updated",
		ToastRuleDeleted:      "Rule deleted",
		ToastTemplateAttached: "Template attached",
		ToastTemplateDetached: "Template detached",
		ToastTemplateCreated:  "Template created",
		ToastTemplateUpdated:  "Template updated",
		ToastTemplateDeleted:  "Template deleted",
		ToastInviteCreated:    "Invite link created",
		ToastInviteRegen:      "Invite link regenerated",
		ToastLinkCopied:       "Link copied",
		ToastUserAddedProject: "User added to project",
		ToastUserRemovedProj:  "User removed from project",
	},
	Spanish: {
		ErrNotPermitted:       "No tienes permiso para hacer eso",
		ErrTitleRequired:      "El título es obligatorio",
		ErrNameRequired:       "El nombre es obligatorio",
		ErrStateRequired:      "El estado destino es obligatorio",
		ErrTypeRequired:       "El tipo de tarea es obligatorio",
		ErrSelectUser:         "Selecciona un usuario",
		ErrSelectProject:      "Selecciona un proyecto",
		ErrSelectTemplate:     "Selecciona una plantilla",
		ErrSelectRule:         "Selecciona una regla",
		ErrSelectWorkflow:     "Selecciona un workflow",
		ErrEmailInvalid:       "Introduce un email válido",
		ErrNoProject:          "No hay proyecto seleccionado",
		ErrCardHasTasks:       "La ficha tiene tareas; elimínalas antes de borrarla",
		ErrLastManager:        "No se puede degradar al último manager del proyecto",
		ErrLastAdmin:          "No se puede degradar al último admin de la organización",
		ErrAlreadyMember:      "El usuario ya es miembro",
		ErrRoleConflict:       "Otra persona cambió el rol",
		ErrClipboard:          "No se pudo copiar al portapapeles: %s",
		ErrSessionExpired:     "Tu sesión ha caducado",
		ToastProjectCreated:   "Proyecto creado",
		ToastMemberAdded:      "Miembro añadido",
		ToastMemberRemoved:    "Miembro eliminado",
		ToastRoleUpdated:      "Rol actualizado",
		ToastCardCreated:      "Ficha creada",
		ToastCardUpdated:      "Ficha actualizada",
		ToastCardDeleted:      "Ficha eliminada",
		ToastWorkflowCreated:  "Workflow creado",
		ToastWorkflowUpdated:  "Workflow actualizado",
		ToastWorkflowDeleted:  "Workflow eliminado",
		ToastRuleCreated:      "Regla creada",
		ToastRuleUpdated:      "Regla actualizada",
		ToastRuleDeleted:      "Regla eliminada",
		ToastTemplateAttached: "Plantilla asociada",
		ToastTemplateDetached: "Plantilla desasociada",
		ToastTemplateCreated:  "Plantilla creada",
		ToastTemplateUpdated:  "Plantilla actualizada",
		ToastTemplateDeleted:  "Plantilla eliminada",
		ToastInviteCreated:    "Enlace de invitación creado",
		ToastInviteRegen:      "Enlace de invitación regenerado",
		ToastLinkCopied:       "Enlace copiado",
		ToastUserAddedProject: "Usuario añadido al proyecto",
		ToastUserRemovedProj:  "Usuario eliminado del proyecto",
	},
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// Match resolves a BCP 47 tag ("es-MX", "en_US.UTF-8", "") to a supported locale.
func Match(tag string) Locale {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ReplaceAll(tag, "_", "-")
	if tag == "" {
		return English
	}
	t, _, _ := matcher.Match(language.Make(tag))
	base, _ := t.Base()
	if base.String() == string(Spanish) {
		return Spanish
	}
	return English
}

// T returns the string for key, formatted with args. Unknown locales fall back
// to English; unknown keys render as the key itself.
func T(loc Locale, key Key, args ...any) string {
	tbl, ok := tables[loc]
	if !ok {
		tbl = tables[English]
	}
	s, ok := tbl[key]
	if !ok {
		s, ok = tables[English][key]
		if !ok {
			return string(key)
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}
