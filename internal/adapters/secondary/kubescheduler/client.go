package kubescheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"provenance-workflow-service/internal/config"
	"provenance-workflow-service/internal/core/domain"
	output "provenance-workflow-service/internal/core/ports/output"
)

var jobGVR = schema.GroupVersionResource{
	Group:    "batch",
	Version:  "v1",
	Resource: "jobs",
}

type kubeScheduler struct {
	client    dynamic.Interface
	enabled   bool
	namespace string
}

// NewKubeScheduler creates a new scheduler adapter that runs calc jobs as
// Kubernetes batch Jobs.
func NewKubeScheduler(cfg *config.KubernetesConfig) (output.SchedulerClient, error) {
	if !cfg.Enabled {
		return &kubeScheduler{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "calc-jobs"
	}

	return &kubeScheduler{
		client:    client,
		enabled:   true,
		namespace: namespace,
	}, nil
}

func (c *kubeScheduler) IsAvailable() bool {
	return c.enabled
}

func (c *kubeScheduler) Submit(ctx context.Context, sub output.JobSubmission) (*output.SubmittedJob, error) {
	obj := c.buildJobObject(sub)

	created, err := c.client.Resource(jobGVR).
		Namespace(c.namespace).
		Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("create batch job: %w", err)
	}

	return &output.SubmittedJob{
		SchedulerRef: created.GetName(),
	}, nil
}

func (c *kubeScheduler) Status(ctx context.Context, schedulerRef string) (*output.JobStatus, error) {
	obj, err := c.client.Resource(jobGVR).
		Namespace(c.namespace).
		Get(ctx, schedulerRef, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get batch job: %w", err)
	}

	return c.parseStatus(obj), nil
}

func (c *kubeScheduler) Kill(ctx context.Context, schedulerRef string) error {
	propagation := metav1.DeletePropagationBackground
	err := c.client.Resource(jobGVR).
		Namespace(c.namespace).
		Delete(ctx, schedulerRef, metav1.DeleteOptions{PropagationPolicy: &propagation})
	if err != nil {
		return fmt.Errorf("delete batch job: %w", err)
	}
	return nil
}

func (c *kubeScheduler) Render(sub output.JobSubmission) (map[string]interface{}, error) {
	return c.buildJobObject(sub).Object, nil
}

func (c *kubeScheduler) buildJobObject(sub output.JobSubmission) *unstructured.Unstructured {
	job := sub.Job
	code := sub.Code
	computer := sub.Computer

	labels := map[string]interface{}{
		"provenance.workflow/calcjob-id": job.ID.String(),
		"provenance.workflow/node-id":    job.NodeID.String(),
		"provenance.workflow/computer":   computer.Name,
	}

	image := code.ContainerImage
	if image == "" {
		image = "busybox:stable"
	}

	container := map[string]interface{}{
		"name":       "calc",
		"image":      image,
		"workingDir": computer.WorkDir,
	}
	if code.ExecutablePath != "" {
		container["command"] = buildCommand(code)
	}
	if len(code.Environment) > 0 {
		env := make([]interface{}, 0, len(code.Environment))
		for k, v := range code.Environment {
			env = append(env, map[string]interface{}{"name": k, "value": v})
		}
		container["env"] = env
	}
	if job.Resources.MaxMemoryKB > 0 {
		container["resources"] = map[string]interface{}{
			"limits": map[string]interface{}{
				"memory": fmt.Sprintf("%dKi", job.Resources.MaxMemoryKB),
			},
		}
	}

	spec := map[string]interface{}{
		"parallelism":  int64(sub.Job.Resources.NumMachines),
		"completions":  int64(sub.Job.Resources.NumMachines),
		"backoffLimit": int64(0),
		"template": map[string]interface{}{
			"metadata": map[string]interface{}{"labels": labels},
			"spec": map[string]interface{}{
				"restartPolicy": "Never",
				"containers":    []interface{}{container},
			},
		},
	}
	if job.Resources.MaxWallclockSecs > 0 {
		spec["activeDeadlineSeconds"] = int64(job.Resources.MaxWallclockSecs)
	}

	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "batch/v1",
			"kind":       "Job",
			"metadata": map[string]interface{}{
				"name":   jobName(job),
				"labels": labels,
			},
			"spec": spec,
		},
	}
}

// buildCommand wraps the executable with the prepend and append text of the
// code registration, the way a scheduler submit script would.
func buildCommand(code *domain.Code) []interface{} {
	var script strings.Builder
	if code.PrependText != "" {
		script.WriteString(code.PrependText)
		script.WriteString("\n")
	}
	script.WriteString(code.ExecutablePath)
	if code.AppendText != "" {
		script.WriteString("\n")
		script.WriteString(code.AppendText)
	}
	return []interface{}{"/bin/sh", "-c", script.String()}
}

func jobName(job *domain.CalcJob) string {
	// Job names must be DNS-1123 compatible; the UUID already is.
	return "calcjob-" + job.ID.String()
}

func (c *kubeScheduler) parseStatus(obj *unstructured.Unstructured) *output.JobStatus {
	status := &output.JobStatus{State: domain.CalcJobStateWithScheduler}

	statusMap, found, _ := unstructured.NestedMap(obj.Object, "status")
	if !found {
		return status
	}

	if active, _, _ := unstructured.NestedInt64(statusMap, "active"); active > 0 {
		status.State = domain.CalcJobStateRunning
	}

	conditions, found, _ := unstructured.NestedSlice(statusMap, "conditions")
	if !found {
		return status
	}
	for _, cond := range conditions {
		condMap, ok := cond.(map[string]interface{})
		if !ok {
			continue
		}
		condType, _ := condMap["type"].(string)
		condStatus, _ := condMap["status"].(string)
		if condStatus != "True" {
			continue
		}

		switch condType {
		case "Complete":
			zero := 0
			status.State = domain.CalcJobStateRetrieving
			status.ExitStatus = &zero
		case "Failed":
			one := 1
			status.State = domain.CalcJobStateFailed
			status.ExitStatus = &one
			if msg, ok := condMap["message"].(string); ok {
				status.Message = msg
			}
		}
	}
	return status
}

// Ensure interface compliance
var _ output.SchedulerClient = (*kubeScheduler)(nil)
