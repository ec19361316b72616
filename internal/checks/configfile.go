package checks

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/mongocheck/internal/docker"
	"github.com/mmr-tortoise/mongocheck/internal/image"
	"github.com/mmr-tortoise/mongocheck/internal/mongoc"
)

// extraFlag is the mongod flag the check injects through
// MONGODB_EXTRA_FLAGS. --notablescan is harmless for a throwaway
// instance and never appears in the image's own startup arguments, so
// seeing it in getCmdLineOpts proves the env var was forwarded.
const extraFlag = "--notablescan"

// configFileCheck asserts that configuration knobs passed as environment
// variables actually land in the running mongod: values routed through
// the config file (read back with an exec session and parsed as YAML,
// mongod's config format) and extra flags routed onto the command line
// (observed via the getCmdLineOpts admin command).
type configFileCheck struct{}

func (c *configFileCheck) Name() string { return "config-file" }

func (c *configFileCheck) Description() string {
	return "environment knobs reach " + image.ConfigFile + " and the mongod command line"
}

func (c *configFileCheck) Run(ctx context.Context, env *Env) error {
	inst, err := env.Launch(ctx, c.Name(), map[string]string{
		image.EnvOplogSize:  strconv.Itoa(env.Params.OplogSizeMB),
		image.EnvExtraFlags: extraFlag,
	})
	if err != nil {
		return err
	}
	if err := inst.WaitReady(ctx); err != nil {
		return err
	}

	res, err := docker.ExecCapture(ctx, env.Docker, inst.ID, []string{"cat", image.ConfigFile})
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	if res.ExitCode != 0 {
		return inst.Diagnose(ctx, fmt.Errorf("reading %s exited with code %d: %s",
			image.ConfigFile, res.ExitCode, res.Stderr))
	}

	if err := assertMongodConf([]byte(res.Stdout), env.Params.OplogSizeMB); err != nil {
		return fmt.Errorf("%s does not match the contract: %w", image.ConfigFile, err)
	}

	// Extra flags bypass the config file, so ask the server how it was
	// actually started.
	client, err := mongoc.Connect(ctx, inst.Target("", "", ""))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	opts, err := mongoc.RunCommand(ctx, client, image.AdminDatabase, bson.D{{Key: "getCmdLineOpts", Value: 1}})
	if err != nil {
		return inst.Diagnose(ctx, fmt.Errorf("getCmdLineOpts failed: %w", err))
	}
	if err := assertCmdLineFlag(opts, extraFlag); err != nil {
		return fmt.Errorf("%s was not forwarded to mongod: %w", image.EnvExtraFlags, err)
	}
	return nil
}

// assertCmdLineFlag verifies the getCmdLineOpts reply lists the flag
// among the argv tokens mongod was started with.
func assertCmdLineFlag(reply bson.M, flag string) error {
	argv, ok := reply["argv"].(bson.A)
	if !ok {
		return fmt.Errorf("reply has no argv array")
	}
	for _, tok := range argv {
		if s, ok := tok.(string); ok && s == flag {
			return nil
		}
	}
	return fmt.Errorf("%s missing from argv %v", flag, argv)
}

// mongodConf models the slice of mongod's YAML configuration the contract
// pins down. Everything else in the file is the image's business.
type mongodConf struct {
	Storage struct {
		DBPath string `yaml:"dbPath"`
	} `yaml:"storage"`
	Net struct {
		Port int `yaml:"port"`
	} `yaml:"net"`
	Replication struct {
		OplogSizeMB int `yaml:"oplogSizeMB"`
	} `yaml:"replication"`
}

// assertMongodConf parses a fetched mongod.conf and verifies the
// contract-relevant values: the data path, the listen port, and the oplog
// size requested through the environment.
func assertMongodConf(raw []byte, wantOplogMB int) error {
	if len(raw) == 0 {
		return fmt.Errorf("file is empty")
	}

	var conf mongodConf
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return fmt.Errorf("not valid YAML: %w", err)
	}

	if conf.Storage.DBPath != image.DataDir {
		return fmt.Errorf("storage.dbPath is %q, want %q", conf.Storage.DBPath, image.DataDir)
	}
	if conf.Net.Port != image.Port {
		return fmt.Errorf("net.port is %d, want %d", conf.Net.Port, image.Port)
	}
	if conf.Replication.OplogSizeMB != wantOplogMB {
		return fmt.Errorf("replication.oplogSizeMB is %d, want %d",
			conf.Replication.OplogSizeMB, wantOplogMB)
	}
	return nil
}
