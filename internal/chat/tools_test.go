package chat

import (
	"strings"
	"testing"

	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/jobs"
)

func TestRegistryDeclarations(t *testing.T) {
	r := NewRegistry(testProfile(), testJob(i18n.German))

	decls := r.Decls()
	if len(decls) != 2 {
		t.Fatalf("declared %d tools, want 2", len(decls))
	}
	if decls[0].Name != ToolContactCard || decls[1].Name != ToolProjects {
		t.Errorf("declaration order = %v", decls)
	}
	for _, d := range decls {
		if d.Description == "" {
			t.Errorf("%s: empty description", d.Name)
		}
	}
}

func TestRegistryAwardOnlyWhenJobHasOne(t *testing.T) {
	job := testJob(i18n.German)
	job.Award = &jobs.Award{Title: "OpenAI Award", VideoURL: "/media/award.mp4"}

	r := NewRegistry(testProfile(), job)
	if _, ok := r.Lookup(ToolAward); !ok {
		t.Error("award tool missing for job with award")
	}
	if len(r.Decls()) != 3 {
		t.Errorf("declared %d tools, want 3", len(r.Decls()))
	}

	plain := NewRegistry(testProfile(), testJob(i18n.German))
	if _, ok := plain.Lookup(ToolAward); ok {
		t.Error("award tool declared without an award")
	}
}

func TestContactInvoke(t *testing.T) {
	r := NewRegistry(testProfile(), testJob(i18n.German))

	tool, ok := r.Lookup(ToolContactCard)
	if !ok {
		t.Fatal("contact tool not declared")
	}
	ack, payload := tool.Invoke()
	if ack != i18n.T(i18n.German).ContactAck {
		t.Errorf("ack = %q", ack)
	}
	if payload.Kind != KindContact || payload.Contact == nil {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Contact.Email != "jan@example.com" || payload.Contact.LinkedInURL == "" {
		t.Errorf("contact card = %+v", payload.Contact)
	}
	if payload.Intro == "" {
		t.Error("card intro missing")
	}
}

func TestProjectsDescriptionNamesProjects(t *testing.T) {
	r := NewRegistry(testProfile(), testJob(i18n.German))

	tool, _ := r.Lookup(ToolProjects)
	if !strings.Contains(tool.Description, "baito") {
		t.Errorf("description does not mention project names: %q", tool.Description)
	}
}

func TestDescriptionsFollowJobLanguage(t *testing.T) {
	de := NewRegistry(testProfile(), testJob(i18n.German))
	en := NewRegistry(testProfile(), testJob(i18n.English))

	deTool, _ := de.Lookup(ToolContactCard)
	enTool, _ := en.Lookup(ToolContactCard)
	if !strings.Contains(deTool.Description, "Kontaktkarte") {
		t.Errorf("German description = %q", deTool.Description)
	}
	if strings.Contains(enTool.Description, "Kontaktkarte") {
		t.Errorf("English description contains German: %q", enTool.Description)
	}
}

func TestLookupUndeclared(t *testing.T) {
	r := NewRegistry(testProfile(), testJob(i18n.German))
	if _, ok := r.Lookup("launchMissiles"); ok {
		t.Error("lookup found an undeclared tool")
	}
}
