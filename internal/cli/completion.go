// Package cli provides terminal helpers for coursectl: shell completion,
// JSON output and an in-flight spinner.
package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const bashTemplate = `#!/bin/bash
# Bash completion for %[1]s

_%[2]s_completion() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
        -config)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        -log-level)
            COMPREPLY=( $(compgen -W "debug info warn error" -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            return 0
            ;;
    esac

    if [[ ${COMP_CWORD} -eq 1 || ${cur} == -* ]]; then
        COMPREPLY=( $(compgen -W "%[3]s -config -log-level -log-format -metrics-addr" -- ${cur}) )
    fi
}

complete -F _%[2]s_completion %[1]s
`

const zshTemplate = `#compdef %[1]s

_%[2]s() {
    local -a commands
    commands=(%[3]s)
    _arguments \
        '-config[configuration file]:file:_files' \
        '-log-level[log level]:level:(debug info warn error)' \
        '-log-format[log format]:format:(json text)' \
        '1:command:->command' \
        '*::arg:->args'
    case $state in
        command) _describe 'command' commands ;;
    esac
}

_%[2]s "$@"
`

const fishTemplate = `# Fish completion for %[1]s
complete -c %[1]s -f -n "__fish_use_subcommand" -a "%[3]s"
complete -c %[1]s -f -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
complete -c %[1]s -o config -r -d "Configuration file path"
complete -c %[1]s -o log-level -x -a "debug info warn error" -d "Log level"
complete -c %[1]s -o log-format -x -a "json text" -d "Log format"
`

// WriteCompletion writes a completion script for program and its commands.
func WriteCompletion(w io.Writer, shell, program string, commands []string) error {
	var tmpl string
	switch shell {
	case "bash":
		tmpl = bashTemplate
	case "zsh":
		tmpl = zshTemplate
	case "fish":
		tmpl = fishTemplate
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}

	sorted := append([]string(nil), commands...)
	sort.Strings(sorted)
	fn := strings.NewReplacer("-", "_", ".", "_").Replace(program)

	_, err := fmt.Fprintf(w, tmpl, program, fn, strings.Join(sorted, " "))
	return err
}
