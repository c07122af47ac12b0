package access

// Action is the closed enumeration of operations subject to authorization.
// Each action is registered against exactly one resource kind's rule table;
// an action unknown to a table is denied.
type Action string

const (
	// Processo.
	ActionCriarProcesso      Action = "CRIAR_PROCESSO"
	ActionEditarProcesso     Action = "EDITAR_PROCESSO"
	ActionExcluirProcesso    Action = "EXCLUIR_PROCESSO"
	ActionIniciarProcesso    Action = "INICIAR_PROCESSO"
	ActionFinalizarProcesso  Action = "FINALIZAR_PROCESSO"
	ActionVisualizarProcesso Action = "VISUALIZAR_PROCESSO"

	// Processo, bulk entry points.
	ActionAceitarCadastroEmBloco    Action = "ACEITAR_CADASTRO_EM_BLOCO"
	ActionHomologarCadastroEmBloco  Action = "HOMOLOGAR_CADASTRO_EM_BLOCO"
	ActionHomologarMapaEmBloco      Action = "HOMOLOGAR_MAPA_EM_BLOCO"
	ActionAceitarMapaEmBloco        Action = "ACEITAR_MAPA_EM_BLOCO"
	ActionDisponibilizarMapaEmBloco Action = "DISPONIBILIZAR_MAPA_EM_BLOCO"

	// Subprocesso, administrative.
	ActionListarSubprocessos    Action = "LISTAR_SUBPROCESSOS"
	ActionVisualizarSubprocesso Action = "VISUALIZAR_SUBPROCESSO"
	ActionCriarSubprocesso      Action = "CRIAR_SUBPROCESSO"
	ActionEditarSubprocesso     Action = "EDITAR_SUBPROCESSO"
	ActionExcluirSubprocesso    Action = "EXCLUIR_SUBPROCESSO"
	ActionAlterarDataLimite     Action = "ALTERAR_DATA_LIMITE"
	ActionReabrirCadastro       Action = "REABRIR_CADASTRO"
	ActionReabrirRevisao        Action = "REABRIR_REVISAO"

	// Subprocesso, cadastro workflow.
	ActionEditarCadastro         Action = "EDITAR_CADASTRO"
	ActionDisponibilizarCadastro Action = "DISPONIBILIZAR_CADASTRO"
	ActionDevolverCadastro       Action = "DEVOLVER_CADASTRO"
	ActionAceitarCadastro        Action = "ACEITAR_CADASTRO"
	ActionHomologarCadastro      Action = "HOMOLOGAR_CADASTRO"

	// Subprocesso, revisão de cadastro workflow.
	ActionEditarRevisaoCadastro         Action = "EDITAR_REVISAO_CADASTRO"
	ActionDisponibilizarRevisaoCadastro Action = "DISPONIBILIZAR_REVISAO_CADASTRO"
	ActionDevolverRevisaoCadastro       Action = "DEVOLVER_REVISAO_CADASTRO"
	ActionAceitarRevisaoCadastro        Action = "ACEITAR_REVISAO_CADASTRO"
	ActionHomologarRevisaoCadastro      Action = "HOMOLOGAR_REVISAO_CADASTRO"

	// Subprocesso, mapa workflow.
	ActionVisualizarMapa      Action = "VISUALIZAR_MAPA"
	ActionEditarMapa          Action = "EDITAR_MAPA"
	ActionDisponibilizarMapa  Action = "DISPONIBILIZAR_MAPA"
	ActionVerificarImpactos   Action = "VERIFICAR_IMPACTOS"
	ActionApresentarSugestoes Action = "APRESENTAR_SUGESTOES"
	ActionValidarMapa         Action = "VALIDAR_MAPA"
	ActionDevolverMapa        Action = "DEVOLVER_MAPA"
	ActionAceitarMapa         Action = "ACEITAR_MAPA"
	ActionHomologarMapa       Action = "HOMOLOGAR_MAPA"
	ActionAjustarMapa         Action = "AJUSTAR_MAPA"

	// Subprocesso, diagnóstico.
	ActionVisualizarDiagnostico Action = "VISUALIZAR_DIAGNOSTICO"
	ActionRealizarAutoavaliacao Action = "REALIZAR_AUTOAVALIACAO"

	// Atividade.
	ActionCriarAtividade        Action = "CRIAR_ATIVIDADE"
	ActionEditarAtividade       Action = "EDITAR_ATIVIDADE"
	ActionExcluirAtividade      Action = "EXCLUIR_ATIVIDADE"
	ActionAssociarConhecimentos Action = "ASSOCIAR_CONHECIMENTOS"
)
