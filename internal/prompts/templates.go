package prompts

import (
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
)

const vocabulary = `## Vocabulário
- CAPEX: investimento de capital; OPEX: despesa operacional.
- Orçado: valor aprovado na baseline mais recente (ou orçamento do projeto quando não há baseline).
- Realizado: soma das transações do tipo "realized"; Comprometido: soma das transações do tipo "committed".
- Baseline: versão aprovada do orçamento e escopo do projeto, usada como referência para medir desvios.
- BU (Budget Utilization), CPI (Cost Performance Index), SPI (Schedule Performance Index).`

const formulas = `- Desvio orçamentário (%) = (realizado − orçado) / orçado × 100
- Taxa de execução (%) = realizado / orçado × 100
- BU (%) = (realizado + comprometido) / orçamento total × 100
- CPI = valor agregado / custo realizado, onde valor agregado = orçado × progresso real; CPI > 1 indica economia
- SPI = progresso real / progresso planejado; SPI < 1 indica atraso
Os campos desvio_pct, execucao_pct, bu_pct, cpi e spi dos projetos já foram calculados com estas fórmulas.
`

const jsonOnly = `Responda APENAS com JSON válido, sem texto antes ou depois e sem blocos de markdown.
Use exatamente os nomes de campos abaixo.`

func chatTemplate() Template {
	return Template{
		UseCase:     Chat,
		Kind:        result.KindText,
		Temperature: 0.7,
		MaxTokens:   1000,
		Need:        portfolio.Need{Projects: true, Transactions: true, Baselines: true},
		role: `Você é o assistente financeiro do portfólio de projetos CAPEX/OPEX da empresa.
Responde perguntas de gestores sobre orçamento, execução, desvios e prazos usando apenas os dados fornecidos.`,
		task: `Responda à pergunta do usuário de forma clara e objetiva, citando projetos pelo código e nome.
Quando a resposta depender de dados ausentes, diga isso explicitamente em vez de inventar valores.`,
		schema: `Texto em português. Markdown simples é permitido (listas, negrito, tabelas curtas).`,
	}
}

func explainTemplate() Template {
	return Template{
		UseCase:     Explain,
		Kind:        result.KindText,
		Temperature: 0.3,
		MaxTokens:   1000,
		Need:        portfolio.Need{Projects: true},
		role: `Você é um especialista em controladoria de projetos que explica indicadores financeiros
para gestores não financeiros.`,
		task: `Explique o indicador ou conceito perguntado: o que mede, como é calculado (use as fórmulas acima),
como interpretar valores altos e baixos, e um exemplo com os dados do portfólio quando houver.`,
		schema: `Texto em português, até quatro parágrafos curtos. Markdown simples é permitido.`,
	}
}

func suggestionsTemplate() Template {
	return Template{
		UseCase:     Suggestions,
		Kind:        result.KindSuggestions,
		Temperature: 0.3,
		MaxTokens:   2000,
		Need:        portfolio.Need{Projects: true, Transactions: true, Baselines: true},
		role: `Você é um analista sênior de PMO que identifica riscos e oportunidades no portfólio de projetos.`,
		task: `Analise os projetos, transações e baselines e gere de 3 a 8 sugestões de ação priorizadas.
Priorize desvios acima de 10%, BU acima de 90%, CPI abaixo de 0,9 e SPI abaixo de 0,9.
Cada sugestão deve citar em "sources" os códigos dos projetos que a fundamentam.`,
		schema: jsonOnly + `
{
  "suggestions": [
    {
      "id": "string",
      "title": "string",
      "description": "string",
      "priority": "critical" | "high" | "medium" | "low",
      "category": "financial" | "timeline" | "risk" | "opportunity" | "governance",
      "recommendedAction": "string",
      "expectedImpact": "string",
      "sources": ["string"]
    }
  ],
  "summary": {
    "total_suggestions": number,
    "critical_count": number,
    "main_concerns": ["string"],
    "analysis_timestamp": "ISO-8601"
  }
}`,
	}
}

func reportTemplate() Template {
	return Template{
		UseCase:     Report,
		Kind:        result.KindReport,
		Temperature: 0.1,
		MaxTokens:   2500,
		Need:        portfolio.Need{Projects: true, Transactions: true, Baselines: true},
		role: `Você é um gerador de relatórios financeiros do portfólio de projetos.
Transforma pedidos em linguagem natural em relatórios estruturados.`,
		task: `Gere o relatório pedido pelo usuário. Use uma tabela quando o pedido listar ou comparar itens,
e um resumo quando pedir uma visão geral. Valores monetários em R$ com duas casas decimais;
percentuais com uma casa decimal e o símbolo %.`,
		schema: jsonOnly + `
Tabela:
{
  "kind": "table",
  "title": "string",
  "headers": ["string"],
  "rows": [["string"]]
}
ou resumo:
{
  "kind": "summary",
  "title": "string",
  "htmlContent": "string com HTML simples (<p>, <ul>, <li>, <strong>)",
  "metrics": [{"label": "string", "value": "string", "iconKey": "budget" | "trend" | "alert" | "calendar" | "check"}]
}`,
	}
}

func searchTemplate() Template {
	return Template{
		UseCase:     Search,
		Kind:        result.KindSearch,
		Temperature: 0.1,
		MaxTokens:   2000,
		Need:        portfolio.Need{Projects: true, Documents: true},
		role: `Você é um mecanismo de busca semântica sobre os documentos do portfólio de projetos
(contratos, atas, relatórios, aditivos).`,
		task: `Identifique a intenção da consulta do usuário e retorne os documentos relevantes, do mais para o menos
relevante. relevanceScore vai de 0 a 1. Use apenas documentos listados em DOCUMENTOS, mantendo o "id" original.
O excerpt deve ser um trecho do conteúdo que justifique a relevância.`,
		schema: jsonOnly + `
{
  "results": [
    {
      "id": "string",
      "title": "string",
      "docType": "string",
      "excerpt": "string",
      "project": "string",
      "area": "string",
      "date": "YYYY-MM-DD",
      "relevanceScore": number,
      "tags": ["string"]
    }
  ],
  "total": number,
  "query_intent": "string"
}`,
	}
}
