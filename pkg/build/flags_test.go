// SPDX-License-Identifier: MIT
package build

import "testing"

func TestInitializeDefaults(t *testing.T) {
	Initialize()
	flags := GetBuildFlags()

	if flags.Name == "" {
		t.Error("expected non-empty build name")
	}
	if flags.Version == "" {
		t.Error("expected non-empty build version")
	}
}

func TestInitializeOverride(t *testing.T) {
	buildVersion = "1.2.3"
	buildCommit = "abc1234"
	defer func() {
		buildVersion = ""
		buildCommit = ""
	}()

	Initialize()
	flags := GetBuildFlags()

	if flags.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", flags.Version)
	}
	if flags.Commit != "abc1234" {
		t.Errorf("expected commit abc1234, got %s", flags.Commit)
	}
}
