package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflow_definitions (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				trigger_type VARCHAR(50) NOT NULL,
				trigger_module VARCHAR(100),
				trigger_config JSONB,
				trigger_conditions JSONB NOT NULL DEFAULT '[]',
				actions JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_definitions_trigger ON workflow_definitions(trigger_type, trigger_module);
			CREATE INDEX idx_definitions_active ON workflow_definitions(is_active);
			CREATE INDEX idx_definitions_created_at ON workflow_definitions(created_at);
		`,
		2: `
			CREATE TABLE workflow_executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id UUID NOT NULL,
				trigger_record_id VARCHAR(255) NOT NULL,
				trigger_module VARCHAR(100) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('pending', 'running', 'completed', 'failed')),
				execution_data JSONB NOT NULL DEFAULT '{}',
				next_action_index INT NOT NULL DEFAULT 0,
				error_message TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_workflow_id ON workflow_executions(workflow_id);
			CREATE INDEX idx_executions_status ON workflow_executions(status);
			CREATE INDEX idx_executions_created_at ON workflow_executions(created_at);
		`,
	}
}
