/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package app_test

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/suparena/sportstore/cmd/sportstore/app"
	"github.com/suparena/sportstore/errors"
)

var _ = Describe("sportstore command", func() {
	var (
		dir    string
		dbPath string
	)

	run := func(args ...string) (string, error) {
		buf := bytes.NewBuffer(nil)
		cmd := app.New()
		cmd.SetOut(buf)
		cmd.SetErr(bytes.NewBuffer(nil))
		cmd.SetArgs(append([]string{"-c", dir, "-e", "sqlite", "-p", dbPath, "--log-level", "ERROR"}, args...))
		err := cmd.Execute()
		return buf.String(), err
	}

	mustRun := func(args ...string) string {
		out, err := run(args...)
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		dbPath = filepath.Join(dir, "store.db")
	})

	It("should print the version", func() {
		out := mustRun("version", "-o", "json")
		var info map[string]string
		Expect(json.Unmarshal([]byte(out), &info)).To(Succeed())
		Expect(info).To(HaveKey("version"))
	})

	Context("user", func() {
		It("should add, show and list users", func() {
			id := strings.TrimSpace(mustRun("user", "add",
				"--first-name", "Sifan", "--last-name", "Hassan",
				"--email", "sifan@example.com", "--gender", "female",
				"--birthday", "1993-01-01"))
			Expect(id).NotTo(BeEmpty())

			out := mustRun("user", "show", "sifan@example.com")
			var shown map[string]interface{}
			Expect(yaml.Unmarshal([]byte(out), &shown)).To(Succeed())
			Expect(shown["identifier"]).To(Equal(id))
			Expect(shown["gender"]).To(Equal("female"))
			Expect(shown["birthday"]).To(Equal("1993-01-01"))

			out = mustRun("user", "list")
			Expect(out).To(ContainSubstring("IDENTIFIER"))
			Expect(out).To(ContainSubstring("sifan@example.com"))
		})

		It("should reject a duplicate email address", func() {
			mustRun("user", "add", "--email", "dup@example.com")
			_, err := run("user", "add", "--email", "dup@example.com")
			Expect(errors.IsConstraintViolation(err)).To(BeTrue())
		})

		It("should change the gender", func() {
			mustRun("user", "add", "--email", "a@example.com")
			mustRun("user", "set-gender", "a@example.com", "diverse")

			out := mustRun("user", "show", "a@example.com", "-o", "json")
			Expect(out).To(ContainSubstring(`"gender": "diverse"`))

			_, err := run("user", "set-gender", "a@example.com", "robot")
			Expect(errors.IsValidationError(err)).To(BeTrue())
		})

		It("should delete users", func() {
			mustRun("user", "add", "--email", "gone@example.com")
			mustRun("user", "delete", "gone@example.com")

			_, err := run("user", "show", "gone@example.com")
			Expect(errors.IsNotFound(err)).To(BeTrue())
		})
	})

	Context("plan", func() {
		It("should activate a plan and tolerate its deletion", func() {
			mustRun("user", "add", "--email", "runner@example.com")
			planID := strings.TrimSpace(mustRun("plan", "add", "Spring 10k", "--start", "2025-03-01"))

			Expect(mustRun("plan", "list")).To(ContainSubstring("Spring 10k"))

			mustRun("plan", "activate", "runner@example.com", planID)
			out := mustRun("user", "show", "runner@example.com")
			Expect(out).To(ContainSubstring(planID))

			mustRun("plan", "delete", planID)
			out = mustRun("user", "show", "runner@example.com")
			Expect(out).To(ContainSubstring(planID))

			mustRun("plan", "activate", "runner@example.com", "none")
			out = mustRun("user", "show", "runner@example.com")
			Expect(out).NotTo(ContainSubstring("activeRunningPlanId"))
		})

		It("should refuse to activate a missing plan", func() {
			mustRun("user", "add", "--email", "runner@example.com")
			_, err := run("plan", "activate", "runner@example.com", "6f1c1a8e-0000-4000-8000-000000000000")
			Expect(errors.IsNotFound(err)).To(BeTrue())
		})
	})

	It("should export every collection", func() {
		mustRun("user", "add", "--email", "export@example.com")
		mustRun("plan", "add", "Base building")

		out := mustRun("export", "--format", "json")
		var dump map[string][]map[string]interface{}
		Expect(json.Unmarshal([]byte(out), &dump)).To(Succeed())
		Expect(dump["users"]).To(HaveLen(1))
		Expect(dump["running_plans"]).To(HaveLen(1))
		Expect(dump["users"][0]["emailAddress"]).To(Equal("export@example.com"))

		out = mustRun("export")
		Expect(out).To(ContainSubstring("running_plans:"))
	})
})
